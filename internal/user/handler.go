package user

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/etag"
	"github.com/sciadvances/catalog-api/internal/transport"
)

type ServiceAPI interface {
	List() ([]*User, error)
	Get(id int64) (*User, error)
	ExistsByUsername(username string) error
	Create(dto CreateUserDTO) (*User, error)
	Update(u *User, dto UpdateUserDTO) (*User, error)
	Delete(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List()
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	body := Collection(users)
	tag := etag.Fingerprint(body)
	if etag.NoneMatch(r, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	etag.SetHeaders(w, tag)
	h.WriteJSON(w, http.StatusOK, body)
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	u, err := h.Service.Get(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	body := Wrap(u)
	tag := etag.Fingerprint(body)
	if etag.NoneMatch(r, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	etag.SetHeaders(w, tag)
	h.WriteJSON(w, http.StatusOK, body)
}

// ExistsByUsername handles GET /users/username/{username}: 204 or 404, no
// body either way.
func (h *Handler) ExistsByUsername(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ExistsByUsername(chi.URLParam(r, "username")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Create handles POST /users; writer scope required, missing scope is a 403.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), RoleWriter) {
		h.WriteError(w, http.StatusForbidden)
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity)
		return
	}

	u, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.Logger.Info("user created", "id", u.ID,
		"uid", internal.UserIDFromContext(r.Context()))

	// the collection route matches with and without a trailing slash
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(u.ID, 10))
	h.WriteJSON(w, http.StatusCreated, Wrap(u))
}

// Update handles PUT /users/{id}. Missing writer scope answers 404 so the
// write path never confirms an account exists; If-Match gates the mutation.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), RoleWriter) {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	var dto UpdateUserDTO
	// a malformed body is treated as an empty patch
	_ = json.NewDecoder(r.Body).Decode(&dto)

	u, err := h.Service.Get(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	current := etag.Fingerprint(Wrap(u))
	if !etag.Match(r, current) {
		h.WriteAppError(w, internal.NewPreconditionFailedError())
		return
	}

	updated, err := h.Service.Update(u, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, transport.StatusContentReturned, Wrap(updated))
}

// Delete handles DELETE /users/{id} with the same 404-for-missing-scope
// policy as Update.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), RoleWriter) {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.Logger.Info("user deleted", "id", id,
		"uid", internal.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
