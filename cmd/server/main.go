package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/nestpoly/internal/asset"
	"github.com/inamate/nestpoly/internal/config"
	"github.com/inamate/nestpoly/internal/document"
	"github.com/inamate/nestpoly/internal/engine"
	"github.com/inamate/nestpoly/internal/export"
	mw "github.com/inamate/nestpoly/internal/middleware"
	"github.com/inamate/nestpoly/internal/preview"
	"github.com/inamate/nestpoly/internal/typeid"
)

const rendersPrefix = "/renders/"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	store, err := asset.NewStore(cfg.OutputDir)
	if err != nil {
		slog.Error("open output store", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, store),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // renders run inside the request
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "output", store.Dir())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, store *asset.Store) *mux.Router {
	limits := engine.Limits{
		MaxFrames:   cfg.MaxFrames,
		MaxDPI:      cfg.MaxDPI,
		MaxSize:     cfg.MaxSize,
		MaxSides:    cfg.MaxSides,
		MaxPolygons: cfg.MaxPolygons,
	}
	exportHandler := export.NewHandler(store, cfg.FfmpegPath, limits, rendersPrefix)
	previewHandler := preview.NewHandler(originPatterns(cfg.Origins()), limits)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Rendered videos
	r.HandleFunc("/api/renders", exportHandler.Render).Methods("POST", "OPTIONS")
	r.PathPrefix(rendersPrefix).Handler(renderFiles(store.Serve(rendersPrefix))).Methods("GET")

	// Presets and single frames
	r.HandleFunc("/api/presets", listPresets).Methods("GET")
	r.HandleFunc("/api/frames/{n}", previewHandler.Frame).Methods("GET")

	// Live preview
	r.HandleFunc("/ws/preview", previewHandler.Stream).Methods("GET")

	return r
}

func listPresets(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]document.Animation)
	for _, name := range document.PresetNames() {
		presets[name], _ = document.Preset(name)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(presets)
}

// renderFiles only lets through files named after a render ID.
func renderFiles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := typeid.FromFilename(strings.TrimPrefix(r.URL.Path, rendersPrefix)); err != nil {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// originPatterns turns allowed origins into the host patterns expected by
// the websocket handshake.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		} else {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
