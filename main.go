package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/karthikpasupuleti/portfolio/portfolio"
)

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return errors.Wrap(err, "unable to create logger")
	}
	defer logger.Sync()

	// A bad content file (no phrases, bad percentages) stops startup here.
	content, err := portfolio.Load(cfg.ContentFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	st, err := openStore(ctx, cfg.DatabasePath, clk, logger)
	if err != nil {
		return err
	}

	s, err := newSite(cfg, content, st, newSMTPMailer(cfg.SMTP, logger), clk, logger)
	if err != nil {
		st.Close()
		return err
	}
	defer s.Close()

	r, err := newRouter(s)
	if err != nil {
		return err
	}

	s.goBackground(func() { s.runCleanup(ctx) })

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// hero streams end when ctx is cancelled
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infow("listening", "addr", srv.Addr, "projects", len(content.Projects))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		stop() // lets the cleanup loop exit before Close waits on it
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
