package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/local/pdfsm/internal/inputs"
	"github.com/local/pdfsm/internal/statuscheck"
	"github.com/local/pdfsm/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve merges over a local HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default PDFSM_ADDR or 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cur.cfg.Server.Addr
	}

	bucket := ""
	if r, err := inputs.New(cur.session.Saved().InputPath, inputs.Options{}); err == nil && r.Kind() == inputs.S3 {
		bucket = r.Bucket()
	}
	checker := statuscheck.New(statuscheck.Options{
		Repair:     cur.gs,
		ConfigPath: cur.session.ConfigPath(),
		S3Bucket:   bucket,
	})

	mux := http.NewServeMux()
	creds := web.Credentials{Username: cur.cfg.Server.Username, Password: cur.cfg.Server.Password}
	if creds.Username == "" || creds.Password == "" {
		log.Warn().Msg("WEB_USERNAME/WEB_PASSWORD not set; /api routes will refuse requests")
	}
	web.New(cur.merger, cur.session, checker, creds).RegisterRoutes(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Msgf("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
	return nil
}
