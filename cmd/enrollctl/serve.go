package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/config"
	"enrollment-insights/internal/logging"
	"enrollment-insights/internal/obs"
	"enrollment-insights/internal/proxy"
	"enrollment-insights/internal/session"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve views, status and manual refresh over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newViewsRouter(a.ctrl, a.metrics, a.logger, newProxyServer(a.cfg, a.logger)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("views api listening", zap.String("addr", addr), zap.Bool("live_mode", a.cfg.LiveMode))
				errCh <- srv.ListenAndServe()
			}()

			// initial load runs alongside the listener; until it lands the
			// static views are served
			startDone := make(chan struct{})
			go func() {
				defer close(startDone)
				if err := a.ctrl.Start(ctx); err != nil {
					a.logger.Warn("initial live refresh failed", zap.Error(err))
				}
			}()

			var serveErr error
			select {
			case <-ctx.Done():
			case serveErr = <-errCh:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			stop()
			<-startDone

			if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				return serveErr
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from LISTEN_ADDR)")
	return cmd
}

// newProxyServer returns the table proxy when credentials are configured,
// so this origin also answers /api/{table}. Otherwise nil.
func newProxyServer(cfg config.Config, logger *zap.Logger) *proxy.Server {
	if !cfg.HasAirtableCredentials() {
		return nil
	}
	return proxy.NewAirtableServer(airtable.FromConfig(cfg, logger), logger)
}

// newViewsRouter is the read side for the presentation layer plus its
// refresh button. metrics and px may be nil.
func newViewsRouter(ctrl *session.Controller, metrics *obs.Metrics, logger *zap.Logger, px *proxy.Server) *mux.Router {
	logger = logging.OrNop(logger)
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/views", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Views())
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Status())
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/refresh", func(w http.ResponseWriter, req *http.Request) {
		err := ctrl.Refresh(req.Context())
		switch {
		case errors.Is(err, session.ErrRefreshInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, session.ErrLiveModeOff):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			// a failed refresh still answers with the status; the current
			// data keeps being served
			if err != nil {
				logger.Warn("refresh failed", zap.Error(err))
			}
			writeJSON(w, http.StatusOK, ctrl.Status())
		}
	}).Methods(http.MethodPost)

	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	// after the fixed /api routes so those win over /api/{table}
	if px != nil {
		px.Register(r)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
