package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"channel-metrics/internal/config"
	"channel-metrics/internal/handler"
	"channel-metrics/internal/repository"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    logrus.StandardLogger(),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	postRepo := repository.NewPostRepository(s.db, s.logger)
	channelRepo := repository.NewChannelRepository(s.db, s.logger)

	postsHandler := handler.NewPostsHandler(postRepo, s.cfg.Listing.DefaultLimit, s.cfg.Listing.MaxLimit, s.logger)
	channelsHandler := handler.NewChannelsHandler(channelRepo, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := s.router.Group("/api")
	{
		// Channel registry
		api.POST("/channels", channelsHandler.RegisterChannel)
		api.GET("/channels", channelsHandler.ListChannels)
		api.DELETE("/channels/:id", channelsHandler.DeleteChannel)

		// Collector ingest surface
		api.POST("/posts", postsHandler.RecordPost)
		api.POST("/posts/delete", postsHandler.SoftDeletePost)
		api.POST("/metrics", postsHandler.AppendMetric)

		// Reader surface
		api.GET("/posts", postsHandler.ListPosts)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
