package handlers

import (
	"io"
	"net/http"

	"github.com/housseynatou/jules-gateway/internal/pipeline"
)

// IdentifyHandler serves photo-based medicine identification. With no
// classifier configured it still answers 200 with a null product, the
// documented "feature disabled" state.
type IdentifyHandler struct {
	svc *pipeline.Service
}

func NewIdentifyHandler(svc *pipeline.Service) *IdentifyHandler {
	return &IdentifyHandler{svc: svc}
}

// IdentifyMed handles POST /identify_med.
func (h *IdentifyHandler) IdentifyMed(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no image file provided"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no image file provided"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "could not read image file"})
		return
	}

	ident := h.svc.Identify(r.Context(), image)
	writeJSON(w, http.StatusOK, ident)
}
