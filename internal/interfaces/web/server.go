package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"nvcompare/internal/application/port"
	"nvcompare/internal/domain/model"
)

// ViewReader exposes the current comparison view.
type ViewReader interface {
	Snapshot() model.ViewSnapshot
}

type Link struct {
	Label string
	URL   string
}

type Donation struct {
	Label   string
	Address string
}

type Site struct {
	Title         string
	MeasurementID string
	Links         []Link
	Donations     []Donation
}

type Deps struct {
	Addr         string
	Quote        port.QuoteSource
	View         ViewReader
	Analytics    port.Analytics
	Hub          *Hub
	CacheControl string
	Site         Site
}

type Server struct {
	deps   Deps
	engine *gin.Engine
	srv    *http.Server
}

func NewServer(deps Deps) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(tmpl)

	s := &Server{deps: deps, engine: r}
	s.routes()
	s.srv = &http.Server{
		Addr:         deps.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.page)
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/ws", func(c *gin.Context) { s.deps.Hub.ServeWS(c.Writer, c.Request) })

	api := s.engine.Group("/api")
	{
		api.GET("/nvidia", s.nvidia)
		api.GET("/comparison", s.comparison)
		api.POST("/events", s.event)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.deps.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.deps.Hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
}
