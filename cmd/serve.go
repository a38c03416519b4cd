package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localatlas/bizscout/internal/pipeline"
	"github.com/localatlas/bizscout/internal/ratelimit"
	"github.com/localatlas/bizscout/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// One registry for the process so cooldowns span requests; the
		// coarse pipeline cooldown then also gates concurrent callers.
		limiter := ratelimit.NewRegistry(cfg.Cooldowns.Durations())

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/search", func(w http.ResponseWriter, req *http.Request) {
			handleSearch(w, req, st, limiter)
		})

		r.Get("/api/history", func(w http.ResponseWriter, req *http.Request) {
			searches, err := st.RecentSearches(req.Context(), 10)
			if err != nil {
				zap.L().Error("history query failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
				return
			}
			if searches == nil {
				searches = []store.Search{}
			}
			writeJSON(w, http.StatusOK, searches)
		})

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("serving", zap.Int("port", cfg.Server.Port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if eris.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func handleSearch(w http.ResponseWriter, req *http.Request, st store.Store, limiter *ratelimit.Registry) {
	var body struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Count == 0 {
		body.Count = 5
	}

	p, err := initPipeline(limiter)
	if err != nil {
		zap.L().Error("pipeline init failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "pipeline unavailable"})
		return
	}

	result, err := p.Run(req.Context(), body.Term, body.Count)
	switch {
	case eris.Is(err, pipeline.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case eris.Is(err, pipeline.ErrCityNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "city not found"})
		return
	case eris.Is(err, pipeline.ErrNoResults):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no businesses found"})
		return
	case err != nil:
		zap.L().Error("search failed", zap.String("term", body.Term), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search failed"})
		return
	}

	if _, err := st.RecordSearch(req.Context(), body.Term); err != nil {
		zap.L().Warn("record search failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
