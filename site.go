package main

import (
	"context"
	"embed"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/karthikpasupuleti/portfolio/portfolio"
)

//go:embed templates/*.html
var templateFS embed.FS

// site carries everything the handlers need.
type site struct {
	cfg     *config
	content *portfolio.Content
	store   *store
	mailer  mailer
	clk     clock.Clock
	logger  *zap.SugaredLogger
	admin   *adminAuth

	viewers atomic.Int64 // open hero streams
	bg      sync.WaitGroup
}

func newSite(cfg *config, content *portfolio.Content, st *store, m mailer, clk clock.Clock, logger *zap.SugaredLogger) (*site, error) {
	admin, err := newAdminAuth(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, err
	}
	return &site{
		cfg:     cfg,
		content: content,
		store:   st,
		mailer:  m,
		clk:     clk,
		logger:  logger,
		admin:   admin,
	}, nil
}

// goBackground runs fn on a goroutine that Close waits for.
func (s *site) goBackground(fn func()) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		fn()
	}()
}

// runCleanup removes expired visitor data now and then once a day until ctx
// is cancelled.
func (s *site) runCleanup(ctx context.Context) {
	t := s.clk.Ticker(24 * time.Hour)
	defer t.Stop()
	for {
		if _, err := s.store.Cleanup(ctx, s.cfg.Retention); err != nil && ctx.Err() == nil {
			s.logger.Errorw("privacy cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (s *site) Close() error {
	s.bg.Wait()
	return s.store.Close()
}

func newRouter(s *site) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse templates")
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), s.visitorTracking())
	r.SetHTMLTemplate(tmpl)

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	setupPublicRoutes(r, s)
	setupAdminRoutes(r, s)
	return r, nil
}
