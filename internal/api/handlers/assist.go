package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/housseynatou/jules-gateway/internal/pipeline"
)

// AssistHandler serves the two conversational routes. The main route
// normalizes through French around the resolver; the jules route talks
// to the alternate agent on raw text and speaks the answer back.
type AssistHandler struct {
	svc        *pipeline.Service
	mainRoute  pipeline.Route
	julesRoute pipeline.Route
}

func NewAssistHandler(svc *pipeline.Service, mainRoute, julesRoute pipeline.Route) *AssistHandler {
	return &AssistHandler{svc: svc, mainRoute: mainRoute, julesRoute: julesRoute}
}

// Transcribe handles POST /transcribe.
func (h *AssistHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	req, err := parseAssistRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.svc.Assist(r.Context(), req, h.mainRoute)
	if errors.Is(err, pipeline.ErrMissingInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no audio file or text provided"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"langue_detectee": resp.DetectedLanguage,
		"transcription":   resp.Transcript,
		"texte_fr":        resp.FrenchText,
		"reponse":         resp.Answer,
	})
}

// TranscribeJules handles POST /transcribe_jules.
func (h *AssistHandler) TranscribeJules(w http.ResponseWriter, r *http.Request) {
	req, err := parseAssistRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := h.svc.Assist(r.Context(), req, h.julesRoute)
	if errors.Is(err, pipeline.ErrMissingInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no audio file or text provided"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	out := map[string]any{
		"transcription": resp.Transcript,
		"jules_reponse": resp.Answer,
	}
	if len(resp.Audio) > 0 {
		out["audio_base64"] = base64.StdEncoding.EncodeToString(resp.Audio)
	}
	writeJSON(w, http.StatusOK, out)
}

type assistBody struct {
	Text   string `json:"text"`
	Lang   string `json:"lang"`
	UserID string `json:"userId"`
	Lat    any    `json:"lat"`
	Lng    any    `json:"lng"`
}

// parseAssistRequest accepts either a multipart form carrying an audio
// file or a JSON body carrying text. Caller context (userId, lat, lng)
// rides along in either shape.
func parseAssistRequest(r *http.Request) (pipeline.Request, error) {
	var req pipeline.Request

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return req, errors.New("invalid multipart form")
		}

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			audio, err := io.ReadAll(file)
			if err != nil {
				return req, errors.New("could not read audio file")
			}
			req.Audio = audio
			req.AudioName = header.Filename
		}

		req.Text = r.FormValue("text")
		req.Language = r.FormValue("lang")
		req.UserID = optionalString(r.FormValue("userId"))
		req.Lat, req.Lng = parseCoords(r.FormValue("lat"), r.FormValue("lng"))
		return req, nil
	}

	var body assistBody
	if err := decodeJSON(r, &body); err != nil {
		// An empty or malformed body reads as "no input": the missing
		// input check downstream turns it into the 400.
		return req, nil
	}
	req.Text = body.Text
	req.Language = body.Lang
	req.UserID = optionalString(body.UserID)
	req.Lat, req.Lng = parseCoords(coordString(body.Lat), coordString(body.Lng))
	return req, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseCoords yields coordinates only when both values parse; partial
// or malformed pairs are dropped rather than defaulted to zero.
func parseCoords(latStr, lngStr string) (*float64, *float64) {
	if latStr == "" || lngStr == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &lat, &lng
}

// coordString renders a JSON coordinate that may arrive as a number or
// a string.
func coordString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
