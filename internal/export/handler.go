package export

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/inamate/nestpoly/internal/asset"
	"github.com/inamate/nestpoly/internal/document"
	"github.com/inamate/nestpoly/internal/engine"
	"github.com/inamate/nestpoly/internal/typeid"
)

const maxBodySize = 64 << 10 // 64KB

var formats = map[string]bool{"mp4": true, "gif": true, "webm": true}

// Handler renders animations into the asset store on request.
type Handler struct {
	store      *asset.Store
	ffmpegPath string
	limits     engine.Limits
	prefix     string
}

// NewHandler creates a render handler. Requests over limits are rejected.
// Rendered files are reachable under urlPrefix, where the caller mounts
// store.Serve.
func NewHandler(store *asset.Store, ffmpegPath string, limits engine.Limits, urlPrefix string) *Handler {
	return &Handler{store: store, ffmpegPath: ffmpegPath, limits: limits, prefix: urlPrefix}
}

type renderRequest struct {
	document.Animation
	Format string `json:"format"`
}

// RenderResponse is returned from the render endpoint.
type RenderResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Format string `json:"format"`
	Frames int    `json:"frames"`
	Layers int    `json:"layers"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Render handles POST /api/renders.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request too large"})
		return
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Format == "" {
		req.Format = "mp4"
	}
	if !formats[req.Format] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid format: must be mp4, gif, or webm"})
		return
	}

	opts, err := req.Animation.Options()
	if err == nil {
		err = h.limits.Check(opts)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id := typeid.NewRenderID()
	name := id + "." + req.Format
	tmp := h.store.TempPath("." + req.Format)
	log := slog.With("render", id)

	a, err := engine.NewAnimator(opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	log.Info("render requested", "sides", opts.Sides, "frames", opts.Frames, "format", req.Format)
	if err := a.Run(r.Context(), NewFFmpegWriter(r.Context(), tmp, opts.FrameRate, h.ffmpegPath)); err != nil {
		h.store.Discard(tmp)
		log.Error("render failed", "error", err)
		msg := "encoding failed"
		if errors.Is(err, ErrEncoderNotFound) {
			msg = "video encoder unavailable"
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	if _, err := h.store.Commit(tmp, name); err != nil {
		h.store.Discard(tmp)
		log.Error("store render", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	log.Info("render complete", "file", name)
	writeJSON(w, http.StatusCreated, RenderResponse{
		ID:     id,
		URL:    h.prefix + name,
		Format: req.Format,
		Frames: opts.Frames,
		Layers: a.Layers(),
		Width:  a.Size(),
		Height: a.Size(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
