package element

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/etag"
	"github.com/sciadvances/catalog-api/internal/transport"
	"github.com/sciadvances/catalog-api/internal/user"
)

type ServiceAPI interface {
	Kind() Kind
	List(order, ordering string) ([]*Element, error)
	Get(id int64) (*Element, error)
	ExistsByName(name string) error
	Create(dto ElementDTO) (*Element, error)
	Update(el *Element, dto ElementDTO) (*Element, error)
	Delete(id int64) error
	Related(ownerID int64, other Kind) ([]*Element, error)
	AddEdge(ownerID int64, other Kind, otherID int64) (*Element, error)
	RemoveEdge(ownerID int64, other Kind, otherID int64) (*Element, error)
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

func (h *Handler) kind() Kind {
	return h.Service.Kind()
}

// List handles GET /{kind}. Supports order/ordering query params and
// If-None-Match short-circuiting.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	elements, err := h.Service.List(r.URL.Query().Get("order"), r.URL.Query().Get("ordering"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	body := Collection(h.kind(), elements)
	tag := etag.Fingerprint(body)
	if etag.NoneMatch(r, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	etag.SetHeaders(w, tag)
	h.WriteJSON(w, http.StatusOK, body)
}

// Get handles GET /{kind}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	el, err := h.Service.Get(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	body := Wrap(h.kind(), el)
	tag := etag.Fingerprint(body)
	if etag.NoneMatch(r, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	etag.SetHeaders(w, tag)
	h.WriteJSON(w, http.StatusOK, body)
}

// ExistsByName handles GET /{kind}/name/{name}: an existence probe answering
// 204 or 404 with no body either way.
func (h *Handler) ExistsByName(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ExistsByName(chi.URLParam(r, "name")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Create handles POST /{kind}. Requires the writer scope; a missing scope is
// a plain 403 here since creation confirms nothing about existing resources.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), user.RoleWriter) {
		h.WriteError(w, http.StatusForbidden)
		return
	}

	var dto ElementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity)
		return
	}

	el, err := h.Service.Create(dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.Logger.Info("created", "kind", h.kind().Singular(), "id", el.ID,
		"uid", internal.UserIDFromContext(r.Context()))

	// the collection route matches with and without a trailing slash
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(el.ID, 10))
	h.WriteJSON(w, http.StatusCreated, Wrap(h.kind(), el))
}

// Update handles PUT /{kind}/{id}. A missing writer scope is answered with
// 404 rather than 403 so the write path never confirms a resource exists to
// an unauthorized caller. The If-Match precondition gates the mutation.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), user.RoleWriter) {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	var dto ElementDTO
	// a malformed body is treated as an empty patch
	_ = json.NewDecoder(r.Body).Decode(&dto)

	el, err := h.Service.Get(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	current := etag.Fingerprint(Wrap(h.kind(), el))
	if !etag.Match(r, current) {
		h.WriteAppError(w, internal.NewPreconditionFailedError())
		return
	}

	updated, err := h.Service.Update(el, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, transport.StatusContentReturned, Wrap(h.kind(), updated))
}

// Delete handles DELETE /{kind}/{id}. The same 404-for-missing-scope policy
// as Update applies.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !internal.HasScope(r.Context(), user.RoleWriter) {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.Logger.Info("deleted", "kind", h.kind().Singular(), "id", id,
		"uid", internal.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// RelatedHandler builds the GET /{kind}/{id}/{otherPlural} handler for one
// counterpart kind.
func (h *Handler) RelatedHandler(other Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.WriteError(w, http.StatusNotFound)
			return
		}

		related, err := h.Service.Related(id, other)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		body := RelatedCollection(other, related)
		etag.SetHeaders(w, etag.Fingerprint(body))
		h.WriteJSON(w, http.StatusOK, body)
	}
}

// EdgeHandler builds the PUT /{kind}/{id}/{otherPlural}/add|rem/{otherId}
// handler for one counterpart kind. Mutating an edge needs the writer scope;
// unlike Update this answers 403, matching the create path.
func (h *Handler) EdgeHandler(other Kind, add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !internal.HasScope(r.Context(), user.RoleWriter) {
			h.WriteError(w, http.StatusForbidden)
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			h.WriteError(w, http.StatusNotFound)
			return
		}
		otherID, err := pathID(r, "otherId")
		if err != nil {
			h.WriteError(w, http.StatusNotAcceptable)
			return
		}

		var el *Element
		if add {
			el, err = h.Service.AddEdge(id, other, otherID)
		} else {
			el, err = h.Service.RemoveEdge(id, other, otherID)
		}
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		h.WriteJSON(w, transport.StatusContentReturned, Wrap(h.kind(), el))
	}
}

func pathID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
