package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/auth"
	"github.com/ashmara/imagevault/internal/conf"
	imageservice "github.com/ashmara/imagevault/internal/image/service"
	platformservice "github.com/ashmara/imagevault/internal/platform/service"
)

type HTTPServer struct {
	server *http.Server
	logger *zap.Logger
}

func NewHTTPServer(
	config *conf.Config,
	logger *zap.Logger,
	jwtManager *auth.Manager,
	imageService *imageservice.ImageService,
	vocabService *imageservice.VocabService,
	credentialService *platformservice.CredentialService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(ViewerMiddleware(jwtManager))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/images", imageService.ListImages)
		api.GET("/images/search", imageService.SearchImages)
		api.GET("/images/:id", imageService.GetImage)
		api.GET("/images/:id/file", imageService.GetImageFile)
		api.GET("/images/:id/thumbnail", imageService.GetImageThumbnail)
		api.POST("/images", imageService.UploadImage)
		api.DELETE("/images/:id", imageService.DeleteImage)
		api.POST("/images/:id/share", imageService.CreateShareToken)

		api.GET("/tags", vocabService.ListTags)
		api.GET("/characters", vocabService.ListCharacters)

		api.POST("/platforms/credentials", credentialService.LinkCredential)
		api.GET("/platforms/credentials", credentialService.ListCredentials)
		api.DELETE("/platforms/credentials/:id", credentialService.UnlinkCredential)
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: logger,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// ViewerMiddleware resolves the viewer identity. No Authorization header
// means an anonymous viewer and the request proceeds; a malformed or invalid
// token is rejected so a caller never silently degrades to anonymous.
func ViewerMiddleware(jwtManager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, err := auth.ExtractTokenFromHeader(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
