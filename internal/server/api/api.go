// Package api provides HTTP API handlers for fingerprint enrollment and matching.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayusman/ridgeline/internal/app"
	"github.com/ayusman/ridgeline/internal/capture"
	"github.com/ayusman/ridgeline/internal/detector"
	"github.com/ayusman/ridgeline/internal/store"
)

// MaxRequestBytes bounds the size of a JSON request body.
const MaxRequestBytes = 32 << 20

// errMissingImage is returned when a request carries no image.
var errMissingImage = errors.New("image is required")

// Service is the fingerprint functionality the handlers expose. *app.App implements it.
type Service interface {
	Users() ([]*store.User, error)
	User(id string) (*store.User, error)
	Enroll(name string, level store.AccessLevel, image []byte) (*store.User, error)
	RemoveUser(id string) error
	Identify(image []byte) (*app.Identification, error)
	Compare(probe, reference []byte) (*app.Comparison, error)
	Preview(image []byte) (*app.Preview, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error to its HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidAccessLevel),
		errors.Is(err, capture.ErrEmptyImage),
		errors.Is(err, capture.ErrUnsupportedImage),
		errors.Is(err, capture.ErrInvalidDataURL),
		errors.Is(err, errMissingImage):
		return http.StatusBadRequest
	case errors.Is(err, detector.ErrNoFeatures):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeImage accepts a data URL or bare standard base64.
func decodeImage(s string) ([]byte, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errMissingImage
	}
	return capture.DecodeDataURL(s)
}
