package server

import (
	"context"
	"net/http"
	"strings"

	"photo-hunt/internal/config"
	"photo-hunt/internal/db"
	"photo-hunt/internal/game"
	"photo-hunt/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// BlobReader serves stored image bytes back over HTTP.
type BlobReader interface {
	Get(ctx context.Context, key string) (db.Blob, error)
}

type Deps struct {
	Sessions *game.SessionManager
	Players  *game.PlayerDirectory
	Teams    *game.TeamRegistry
	Photos   *game.PhotoWorkflow
	Blobs    BlobReader
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type Server struct {
	db       *gorm.DB
	cfg      config.Config
	sessions *game.SessionManager
	players  *game.PlayerDirectory
	teams    *game.TeamRegistry
	photos   *game.PhotoWorkflow
	blobs    BlobReader
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	limiter  *submitLimiter
}

func New(conn *gorm.DB, cfg config.Config, deps Deps) *Server {
	return &Server{
		db:       conn,
		cfg:      cfg,
		sessions: deps.Sessions,
		players:  deps.Players,
		teams:    deps.Teams,
		photos:   deps.Photos,
		blobs:    deps.Blobs,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		limiter:  newSubmitLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst),
	}
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	if s.cfg.GinMode != "" {
		gin.SetMode(s.cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", s.handleHealth)
	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	s.mountBlobs(router)

	api := router.Group("/api")
	api.GET("/sessions", s.handleEnsureSession)

	players := api.Group("/players")
	players.GET("", s.handleListPlayers)
	players.POST("", s.handleCreatePlayer)
	players.DELETE("", s.handleDeletePlayers)
	players.GET("/:id", s.handleGetPlayer)
	players.DELETE("/:id", s.handleDeletePlayer)
	players.GET("/:id/opponents", s.handleOpponents)

	teams := api.Group("/teams")
	teams.GET("", s.handleListTeams)
	teams.POST("", s.handleCreateTeam)
	teams.DELETE("", s.handleDeleteTeams)
	teams.POST("/assign", s.handleAssign)
	teams.POST("/unassign", s.handleUnassign)
	teams.POST("/reset-points", s.handleResetPoints)
	teams.PATCH("/:id", s.handleRenameTeam)
	teams.DELETE("/:id", s.handleDeleteTeam)

	photos := api.Group("/photos")
	photos.GET("", s.handleListPhotos)
	photos.POST("", s.handleSubmitPhoto)
	photos.GET("/:id", s.handleGetPhoto)
	photos.PATCH("/:id", s.handleReviewPhoto)

	return router
}

// mountBlobs serves uploaded photos when they live under a local path.
func (s *Server) mountBlobs(router *gin.Engine) {
	base := strings.TrimRight(s.cfg.BlobBaseURL, "/")
	if !strings.HasPrefix(base, "/") || base == "" {
		return
	}
	switch {
	case s.blobs != nil:
		router.GET(base+"/*key", s.handleGetBlob)
	case s.cfg.BlobBackend == config.BlobBackendDisk && s.cfg.BlobDir != "":
		router.Static(base, s.cfg.BlobDir)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
