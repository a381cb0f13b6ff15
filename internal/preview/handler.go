package preview

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/nestpoly/internal/document"
	"github.com/inamate/nestpoly/internal/engine"
	"github.com/inamate/nestpoly/internal/typeid"
)

// Handler serves the live preview websocket and per-frame draw commands.
type Handler struct {
	originPatterns []string
	limits         engine.Limits
}

// NewHandler creates a preview handler. originPatterns lists the hosts
// allowed to open the websocket, as in websocket.AcceptOptions.
func NewHandler(originPatterns []string, limits engine.Limits) *Handler {
	return &Handler{originPatterns: originPatterns, limits: limits}
}

func (h *Handler) options(r *http.Request) (engine.Options, error) {
	doc, err := document.FromQuery(r.URL.Query())
	if err != nil {
		return engine.Options{}, err
	}
	opts, err := doc.Options()
	if err != nil {
		return engine.Options{}, err
	}
	if err := h.limits.Check(opts); err != nil {
		return engine.Options{}, err
	}
	return opts, nil
}

// Stream handles GET /ws/preview.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	anim, err := engine.NewAnimator(opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	id := typeid.NewPreviewID()
	if err := NewStream(conn, anim, id).Run(r.Context()); err != nil {
		slog.Debug("preview ended", "preview", id, "error", err)
	}
}

// FrameResponse is the draw command list of a single frame.
type FrameResponse struct {
	Frame    int                  `json:"frame"`
	Angle    float64              `json:"angle"`
	Size     int                  `json:"size"`
	Layers   int                  `json:"layers"`
	Commands []engine.DrawCommand `json:"commands"`
}

// Frame handles GET /api/frames/{n}.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "frame must be a non-negative integer"})
		return
	}
	opts, err := h.options(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if n >= opts.Frames {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("frame %d out of range [0, %d)", n, opts.Frames)})
		return
	}

	sg, err := engine.SceneAt(opts, n)
	if err != nil {
		slog.Error("build scene", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, FrameResponse{
		Frame:    n,
		Angle:    sg.Angle,
		Size:     opts.Size(),
		Layers:   len(sg.Layers),
		Commands: engine.CompileDrawCommands(sg),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
