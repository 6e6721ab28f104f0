package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lostfound/internal/auth"
	"lostfound/internal/cloudinary"
	"lostfound/internal/config"
	"lostfound/internal/httpapi"
	"lostfound/internal/httpmiddleware"
	"lostfound/internal/items"
	"lostfound/internal/store"
	"lostfound/internal/users"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisDialTimeout, cfg.RedisTimeout)

	userRepo := users.NewRepository(db.Client)
	itemRepo := items.NewRepository(db.Client)

	userSvc := users.NewService(userRepo, users.BootstrapAdmin{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("admin bootstrap disabled (ADMIN_EMAIL / ADMIN_PASSWORD not set)")
	}
	itemSvc := items.NewService(itemRepo, userRepo)

	tokens := auth.NewIssuer(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionTTL)

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	h := httpapi.New(userSvc, itemSvc, tokens, cdnClient, cfg.Env == "dev")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware(cfg.CORSOrigin))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.BodyLimit(cfg.MaxBodyBytes))
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.RateLimit(newLimiter(cfg, redisClient, "api", cfg.RateLimitPerMin)))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	// Login and registration get a tighter limit than the rest of the API.
	authLimit := httpmiddleware.RateLimit(newLimiter(cfg, redisClient, "auth", cfg.AuthRateLimitPerMin))

	authGroup := r.Group("/auth")
	authGroup.POST("/register", authLimit, h.RegisterUser)
	authGroup.POST("/login", authLimit, h.Login)
	authGroup.GET("/me", h.RequireUser(), h.Me)
	authGroup.GET("/users", h.RequireUser(), h.RequireAdmin(), h.ListUsers)
	authGroup.DELETE("/users/:id", h.RequireUser(), h.RequireAdmin(), h.DeleteUser)

	lf := r.Group("/lost-found")
	lf.GET("", h.ListItems)
	lf.POST("", h.RequireUser(), h.CreateItem)
	lf.POST("/upload", h.RequireUser(), h.Upload)
	lf.POST("/:id/mark-claimed", h.RequireUser(), h.MarkClaimed)
	lf.POST("/:id/unmark-claimed", h.RequireUser(), h.RequireAdmin(), h.UnmarkClaimed)
	lf.DELETE("/:id", h.RequireUser(), h.RequireAdmin(), h.DeleteItem)

	// Graceful shutdown
	srv := &http.Server{
		Addr:           ":" + cfg.HTTPPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

func newLimiter(cfg config.App, redisClient *store.Redis, name string, perMinute int) httpmiddleware.Limiter {
	if cfg.RateLimitBackend == "redis" {
		return httpmiddleware.NewRedisLimiter(redisClient.Client, "lostfound:ratelimit:"+name, perMinute)
	}
	return httpmiddleware.NewSimpleTokenBucket(perMinute, perMinute)
}

// CORS middleware for browser requests
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
