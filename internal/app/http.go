package app

import (
	"context"
	"net/http"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth"
	"github.com/Techtuskers-redefined/shopgenie/internal/auth/credentials"
	"github.com/Techtuskers-redefined/shopgenie/internal/auth/handler"
	"github.com/Techtuskers-redefined/shopgenie/internal/auth/provider"
	"github.com/Techtuskers-redefined/shopgenie/internal/auth/provider/apple"
	"github.com/Techtuskers-redefined/shopgenie/internal/auth/provider/google"
	"github.com/Techtuskers-redefined/shopgenie/internal/config"
	"github.com/Techtuskers-redefined/shopgenie/internal/logger"
	"github.com/Techtuskers-redefined/shopgenie/internal/middleware"
	"github.com/Techtuskers-redefined/shopgenie/internal/token"
	"github.com/Techtuskers-redefined/shopgenie/internal/user"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	userStore := user.NewPostgresStore(infra.DB)
	hasher := credentials.NewHasher(credentials.DefaultCost)

	tokens := token.NewManager(token.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})

	var denylist token.Denylist
	if infra.Redis != nil {
		denylist = token.NewRedisDenylist(infra.Redis.Client)
	}

	verifiers := make([]auth.Verifier, 0, 2)
	if cfg.Google.ClientID != "" {
		googleProvider, err := google.New(ctx, cfg.Google.ClientID)
		if err != nil {
			return nil, nil, err
		}
		verifiers = append(verifiers, googleProvider)
	}
	if cfg.Apple.ServiceID != "" {
		appleProvider, err := apple.New(ctx, cfg.Apple.ServiceID)
		if err != nil {
			return nil, nil, err
		}
		verifiers = append(verifiers, appleProvider)
	}
	registry := provider.NewRegistry(verifiers...)

	service := auth.NewService(userStore, hasher, tokens, denylist, registry, log)
	authHandler := handler.NewHandler(service, log)
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	requireAuth := middleware.GinRequireAuth(authMiddleware)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router, requireAuth)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------
	// Downstream resources (products, deals, shopping lists, insights)
	// mount under this group; /me demonstrates the guard.

	api := router.Group("/api")
	api.Use(requireAuth)

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if infra.Redis != nil {
			_ = infra.Redis.Close()
		}
		return infra.DB.Close()
	}, nil
}
