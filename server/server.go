// Package server serves rendered papers over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hesusruiz/paperview/config"
	"github.com/hesusruiz/paperview/page"
	"github.com/hesusruiz/paperview/render"
	"github.com/hesusruiz/paperview/source"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Server renders the configured paper on every request, so changes to the
// source are visible on reload.
type Server struct {
	cfg      *config.Config
	source   source.Fetcher
	selector *render.Selector
	registry *prometheus.Registry
	template []byte
	log      *zap.SugaredLogger
}

// New creates a server for the paper described by cfg.
func New(cfg *config.Config, src source.Fetcher, log *zap.SugaredLogger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		source:   src,
		registry: prometheus.NewRegistry(),
		log:      log,
	}

	if len(cfg.Template) > 0 {
		tpl, err := os.ReadFile(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		if _, err := page.NewFromTemplate(bytes.NewReader(tpl)); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Template, err)
		}
		s.template = tpl
	}

	s.registry.MustRegister(collectors.NewGoCollector())

	s.selector = render.NewSelector(cfg.CodeStyle, log)
	s.selector.AssetBase = cfg.LaTeXAssetBase
	s.selector.Metrics = render.NewMetrics(s.registry)

	return s, nil
}

// Router returns the routes of the server.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handlePaper)
	router.GET("/cite/:key", s.handleCite)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return router
}

// Run listens on the configured address until the server fails.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.log.Infow("starting server", "addr", s.cfg.Addr, "paper", s.cfg.Paper)
	return srv.ListenAndServe()
}

func (s *Server) newPage() (*page.Page, error) {
	if s.template == nil {
		return page.New(), nil
	}
	return page.NewFromTemplate(bytes.NewReader(s.template))
}

func (s *Server) loadOptions(renderer string) render.LoadOptions {
	if len(renderer) == 0 {
		renderer = s.cfg.Renderer
	}
	return render.LoadOptions{
		Source:       s.source,
		Paper:        s.cfg.Paper,
		Bibliography: s.cfg.Bibliography,
		Mode:         render.ParseMode(renderer),
		Timeout:      s.cfg.FetchTimeout,
	}
}

// handlePaper renders the paper. The renderer query parameter overrides the
// configured renderer.
func (s *Server) handlePaper(c *gin.Context) {
	p, err := s.newPage()
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	p.SetTitle(s.cfg.Title)

	status := http.StatusOK
	if _, err := s.selector.Load(c.Request.Context(), p, s.loadOptions(c.Query("renderer"))); err != nil {
		status = http.StatusInternalServerError
		if errors.Is(err, source.ErrNotFound) {
			status = http.StatusNotFound
		}
	}

	out, err := p.Bytes()
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(status, contentTypeHTML, out)
}

// handleCite returns the detail panel of one citation.
func (s *Server) handleCite(c *gin.Context) {
	key := c.Param("key")

	resolved, err := s.selector.LoadReferences(c.Request.Context(), s.loadOptions(""))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	r := render.Detail(resolved, key)

	status := http.StatusOK
	if r == nil {
		status = http.StatusNotFound
	}
	c.Data(status, contentTypeHTML, []byte(render.RenderDetail(key, r)))
}
