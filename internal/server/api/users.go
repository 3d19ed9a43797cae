package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/ridgeline/internal/store"
)

// UserHandler handles HTTP requests for enrolled users.
type UserHandler struct {
	svc Service
}

// NewUserHandler creates a new UserHandler backed by svc.
func NewUserHandler(svc Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/users or /api/users/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/users")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.enroll(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type enrollRequest struct {
	Name        string `json:"name"`
	AccessLevel string `json:"access_level"`
	Image       string `json:"image"` // base64 or data URL
}

type userResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessLevel string `json:"access_level"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
}

func toUserResponse(u *store.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		AccessLevel: string(u.AccessLevel),
		Role:        u.AccessLevel.Role(),
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/users.
func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := listUsersResponse{Users: make([]userResponse, 0, len(users))}
	for _, u := range users {
		response.Users = append(response.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, response)
}

// enroll handles POST /api/users.
func (h *UserHandler) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	level, err := store.ParseAccessLevel(req.AccessLevel)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Access level must be one of: level1, level2, level3")
		return
	}
	image, err := decodeImage(req.Image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.svc.Enroll(name, level, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// get handles GET /api/users/{id}.
func (h *UserHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	user, err := h.svc.User(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// delete handles DELETE /api/users/{id}.
func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.RemoveUser(id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
