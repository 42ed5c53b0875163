package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>prediag-inference — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

var swaggerJSON = gin.H{
	"openapi": "3.0.0",
	"info": gin.H{
		"title":   ServiceName,
		"version": ServiceVersion,
	},
	"paths": gin.H{
		"/api/v1/predict": gin.H{
			"post": gin.H{
				"summary": "Upload a chest X-ray for pneumonia classification",
				"requestBody": gin.H{
					"content": gin.H{
						"multipart/form-data": gin.H{
							"schema": gin.H{
								"type": "object",
								"properties": gin.H{
									"file":    gin.H{"type": "string", "format": "binary"},
									"user_id": gin.H{"type": "string"},
								},
							},
						},
					},
				},
				"responses": gin.H{
					"200": gin.H{"description": "prediction record"},
					"400": gin.H{"description": "invalid upload"},
					"413": gin.H{"description": "file too large"},
				},
			},
		},
		"/api/v1/predictions/{id}": gin.H{
			"get": gin.H{
				"summary":   "Fetch a recent prediction by id",
				"responses": gin.H{"200": gin.H{"description": "prediction record"}, "404": gin.H{"description": "unknown or expired id"}},
			},
		},
		"/api/v1/cases": gin.H{
			"get": gin.H{
				"summary":   "List prediagnostic cases for a user",
				"responses": gin.H{"200": gin.H{"description": "case summaries"}},
			},
		},
		"/api/v1/cases/{id}": gin.H{
			"get": gin.H{
				"summary":   "Fetch one case for doctor review",
				"responses": gin.H{"200": gin.H{"description": "case"}, "404": gin.H{"description": "unknown case"}},
			},
		},
		"/api/v1/cases/{id}/diagnostic": gin.H{
			"post": gin.H{
				"summary":   "Record a doctor's diagnostic review",
				"responses": gin.H{"201": gin.H{"description": "created"}, "409": gin.H{"description": "already reviewed"}},
			},
			"get": gin.H{
				"summary":   "Fetch a doctor's review",
				"responses": gin.H{"200": gin.H{"description": "diagnostic"}, "404": gin.H{"description": "no review yet"}},
			},
		},
		"/api/v1/health": gin.H{
			"get": gin.H{"summary": "Predictor health", "responses": gin.H{"200": gin.H{"description": "healthy"}, "503": gin.H{"description": "model not loaded"}}},
		},
		"/api/v1/info": gin.H{
			"get": gin.H{"summary": "Service metadata", "responses": gin.H{"200": gin.H{"description": "info"}}},
		},
	},
}
