package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"skincraft-api/internal/capes"
	"skincraft-api/internal/config"
	"skincraft-api/internal/gallery"
	"skincraft-api/internal/laby"
	"skincraft-api/internal/names"
	"skincraft-api/internal/profile"
	"skincraft-api/internal/security"
)

// ProfileService exposes player profiles and formatted texture groups.
type ProfileService interface {
	Profile(ctx context.Context, identifier string) (*profile.Response, error)
	Capes(ctx context.Context, identifier string) ([]profile.Cape, error)
	Skins(ctx context.Context, identifier string) ([]profile.Skin, error)
}

// NamePredictor answers availability queries for a single username.
type NamePredictor interface {
	Predict(ctx context.Context, username string) (names.Result, error)
}

// NamesLister lists names that will soon become claimable.
type NamesLister interface {
	UpcomingNames(ctx context.Context, q laby.NamesQuery) ([]laby.UpcomingName, error)
}

// Gallery scrapes skin gallery pages. An empty result means the render
// failed or the page had nothing to show.
type Gallery interface {
	Latest(ctx context.Context) []gallery.Entry
	Random(ctx context.Context) []gallery.Entry
	Trending(ctx context.Context, period string) []gallery.Entry
}

// ResponseCache replays and stores marshaled JSON payloads keyed by
// request identity. A nil value disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

type Server struct {
	log       *slog.Logger
	cfg       config.Config
	cache     ResponseCache
	catalog   *capes.Catalog
	profiles  ProfileService
	predictor NamePredictor
	names     NamesLister
	gallery   Gallery
	limiter   *security.LimiterStore
	router    *gin.Engine
}

func NewServer(
	log *slog.Logger,
	cfg config.Config,
	responseCache ResponseCache,
	catalog *capes.Catalog,
	profiles ProfileService,
	predictor NamePredictor,
	namesLister NamesLister,
	galleryExtractor Gallery,
) *Server {
	s := &Server{
		log:       log,
		cfg:       cfg,
		cache:     responseCache,
		catalog:   catalog,
		profiles:  profiles,
		predictor: predictor,
		names:     namesLister,
		gallery:   galleryExtractor,
		limiter:   security.NewLimiterStore(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute),
		router:    gin.New(),
	}

	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.corsMiddleware())
	r.Use(s.loggingMiddleware())
	r.Use(s.inputValidationMiddleware())
	r.Use(s.rateLimitMiddleware())

	s.registerRoutes(r.Group("/api"))

	r.GET("/api", s.index)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	// legacy unprefixed routes for backward compatibility
	s.registerRoutes(r.Group(""))

	return s
}

func (s *Server) registerRoutes(g *gin.RouterGroup) {
	g.GET("/user/:identifier/profile", s.getProfile)
	g.GET("/user/:identifier/capes", s.getUserCapes)
	g.GET("/user/:identifier/skins", s.getUserSkins)

	g.GET("/capes", s.getAllCapes)

	g.GET("/names", s.getUpcomingNames)
	g.GET("/names/:length", s.getNamesByLength)
	g.GET("/name/:username", s.checkName)

	g.GET("/skins/latest", s.getLatestSkins)
	g.GET("/skins/random", s.getRandomSkins)
	g.GET("/skins/daily", s.getTrendingSkins)
	g.GET("/skins/weekly", s.getTrendingSkins)
	g.GET("/skins/monthly", s.getTrendingSkins)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ctx bounds one request's upstream work; gallery renders can take most of
// the scrape timeout, so the bound sits above it.
func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.ScrapeTimeout+15*time.Second)
}
