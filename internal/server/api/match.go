package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/ridgeline/internal/match"
)

// MatchHandler serves identification, verification and skeleton previews.
type MatchHandler struct {
	svc Service
}

// NewMatchHandler creates a new MatchHandler backed by svc.
func NewMatchHandler(svc Service) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type imageRequest struct {
	Image string `json:"image"`
}

type compareRequest struct {
	Probe     string `json:"probe"`
	Reference string `json:"reference"`
}

type compareResponse struct {
	Score int                    `json:"score"`
	Good  []match.Correspondence `json:"good"`
	Total int                    `json:"total"`
	Min   float64                `json:"min"`
	Max   float64                `json:"max"`
	Mean  float64                `json:"mean"`
	Match bool                   `json:"match"`
}

type candidateResponse struct {
	TemplateID string `json:"template_id"`
	Score      int    `json:"score"`
}

type identifyResponse struct {
	Granted    bool                `json:"granted"`
	Score      int                 `json:"score"`
	TemplateID string              `json:"template_id,omitempty"`
	User       *userResponse       `json:"user,omitempty"`
	Candidates []candidateResponse `json:"candidates"`
}

// Identify handles POST /api/identify.
func (h *MatchHandler) Identify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req imageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := h.svc.Identify(image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := identifyResponse{
		Granted:    id.Granted,
		Score:      id.Score,
		TemplateID: id.TemplateID,
		Candidates: make([]candidateResponse, 0, len(id.Candidates)),
	}
	if id.User != nil {
		u := toUserResponse(id.User)
		response.User = &u
	}
	for _, c := range id.Candidates {
		response.Candidates = append(response.Candidates, candidateResponse{TemplateID: c.ID, Score: c.Score()})
	}
	writeJSON(w, http.StatusOK, response)
}

// Compare handles POST /api/compare.
func (h *MatchHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compareRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	probe, err := decodeImage(req.Probe)
	if err != nil {
		writeError(w, statusFor(err), "probe: "+err.Error())
		return
	}
	reference, err := decodeImage(req.Reference)
	if err != nil {
		writeError(w, statusFor(err), "reference: "+err.Error())
		return
	}

	cmp, err := h.svc.Compare(probe, reference)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	res := cmp.Result
	writeJSON(w, http.StatusOK, compareResponse{
		Score: res.Count,
		Good:  res.Good,
		Total: res.Total,
		Min:   res.Min,
		Max:   res.Max,
		Mean:  res.Mean,
		Match: cmp.Match,
	})
}

// Preview handles POST /api/preview and returns the skeleton as PNG.
func (h *MatchHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req imageRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	p, err := h.svc.Preview(image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Skeleton-Passes", strconv.Itoa(p.Passes))
	w.Header().Set("X-Skeleton-Removed", strconv.Itoa(p.Removed))
	w.Header().Set("X-Keypoints", strconv.Itoa(p.Keypoints))
	w.WriteHeader(http.StatusOK)
	w.Write(p.PNG)
}
