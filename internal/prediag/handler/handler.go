package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prediag/inference-service/internal/prediag/service"
)

type diagnosticRequest struct {
	Label   string `json:"etiqueta" binding:"required"`
	Comment string `json:"comentario"`
}

// RegisterCaseRoutes mounts the doctor case-review endpoints on the given
// group. The write endpoint is guarded by authMW when non-nil.
func RegisterCaseRoutes(rg *gin.RouterGroup, svc *service.Service, authMW gin.HandlerFunc) {
	rg.GET("/cases", func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
			return
		}
		list, err := svc.ListCases(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cases"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "total": len(list), "cases": list})
	})

	rg.GET("/cases/:id", func(c *gin.Context) {
		p, err := svc.GetCase(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch case"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	rg.GET("/cases/:id/diagnostic", func(c *gin.Context) {
		d, err := svc.GetDiagnostic(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "diagnostic not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch diagnostic"})
			return
		}
		c.JSON(http.StatusOK, d)
	})

	post := func(c *gin.Context) {
		var req diagnosticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d, err := svc.SaveDiagnostic(c.Request.Context(), c.Param("id"), req.Label, req.Comment)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidLabel):
				c.JSON(http.StatusBadRequest, gin.H{"error": "etiqueta must be 'aprobo' or 'no aprobo'"})
			case errors.Is(err, service.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
			case errors.Is(err, service.ErrDuplicate):
				c.JSON(http.StatusConflict, gin.H{"error": "diagnostic already recorded for this case"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save diagnostic"})
			}
			return
		}
		c.JSON(http.StatusCreated, d)
	}
	if authMW != nil {
		rg.POST("/cases/:id/diagnostic", authMW, post)
	} else {
		rg.POST("/cases/:id/diagnostic", post)
	}
}
