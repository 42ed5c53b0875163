package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prediag/inference-service/handlers"
	"github.com/prediag/inference-service/internal/cache"
	"github.com/prediag/inference-service/internal/config"
	"github.com/prediag/inference-service/internal/database"
	"github.com/prediag/inference-service/internal/inference"
	"github.com/prediag/inference-service/internal/prediag/handler"
	"github.com/prediag/inference-service/internal/prediag/service"
	"github.com/prediag/inference-service/internal/storage"
	"github.com/prediag/inference-service/pkg/logger"
	"github.com/prediag/inference-service/pkg/metrics"
	"github.com/prediag/inference-service/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URL != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate-limiter and the prediction cache can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-caller when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Load the model; failure is fatal.
	engine, err := inference.NewEngine(cfg.Model.Path, cfg.Model.MetadataPath)
	if err != nil {
		logger.Fatalf("failed to load model from %s: %v", cfg.Model.Path, err)
	}
	defer engine.Close()
	meta := engine.Metadata()
	predictor := inference.NewPredictor(engine, meta.ImageWidth, meta.ImageHeight)
	logger.Infof("Model loaded: %s (classes: %v)", cfg.Model.Path, meta.Classes)

	// MongoDB-backed case storage, with retry/backoff to tolerate startup races.
	// Falls back to the in-memory repository when Mongo is unreachable.
	var caseSvc *service.Service
	ctx := context.Background()
	if cfg.MongoDB.URL != "" {
		client, errConn := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URL, cfg.MongoDB.ConnectTimeout, 5)
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB: %v", errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			caseSvc = service.NewMongoService(
				db.Collection(cfg.MongoDB.PrediagnosticsCollection),
				db.Collection(cfg.MongoDB.DiagnosticsCollection),
			)
			logger.Infof("Connected to MongoDB: %s", cfg.MongoDB.Database)
		}
	}
	if caseSvc == nil {
		logger.Warn("using in-memory case storage; cases will not survive restarts")
		caseSvc = service.NewMemoryService()
	}

	// Optional radiograph object storage
	var radiographs *storage.RadiographStore
	if cfg.MinIO.Endpoint != "" {
		radiographs, err = storage.NewRadiographStore(cfg.MinIO)
		if err != nil {
			logger.Warnf("failed to initialize radiograph storage: %v", err)
			radiographs = nil
		} else {
			logger.Infof("Radiograph storage ready: %s/%s", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		}
	}

	// Optional prediction cache
	var predCache *cache.PredictionCache
	if redisClient != nil {
		predCache = cache.NewPredictionCache(redisClient, "", cfg.Redis.CacheTTL)
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["model"] = engine.Loaded()
		if !deps["model"] {
			ready = false
		}
		deps["storage"] = caseSvc != nil
		if !deps["storage"] {
			ready = false
		}
		// optional deps are reported but never block readiness
		deps["redis"] = redisClient != nil
		deps["minio"] = radiographs != nil

		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": handlers.ServiceName,
			"version": handlers.ServiceVersion,
			"status":  "running",
			"docs":    "/swagger/index.html",
			"api":     "/api/v1",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	apiHandler := handlers.NewAPIHandler(cfg, predictor, caseSvc, radiographs, predCache)
	apiHandler.Register(api)

	// doctor review endpoints; writes require a service token
	var authMW gin.HandlerFunc
	if cfg.JWT.Secret != "" {
		authMW = middleware.AuthMiddleware(cfg.JWT.Secret)
	} else {
		logger.Warn("JWT_SECRET not set; diagnostic writes are unprotected")
	}
	handler.RegisterCaseRoutes(api, caseSvc, authMW)

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting prediagnostic inference service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
