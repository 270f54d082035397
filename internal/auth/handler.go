package auth

import (
	"encoding/json"
	"net/http"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
	tokens  TokenService
}

func NewHandler(base *transport.BaseHandler, service *Service, tokens TokenService) *Handler {
	return &Handler{
		BaseHandler: base,
		service:     service,
		tokens:      tokens,
	}
}

// AccessToken exchanges credentials for a bearer token.
//
//	@Summary		Request an access token
//	@Description	Exchanges username and password for a signed bearer token limited to the requested scopes.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginDTO	true	"Credentials and requested scope"
//	@Success		200			{object}	AccessTokenResponse
//	@Failure		403			{object}	transport.ErrorResponse
//	@Failure		404			{object}	transport.ErrorResponse
//	@Router			/access_token [post]
func (h *Handler) AccessToken(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusNotFound)
		return
	}

	token, err := h.service.Authenticate(dto.Username, dto.Password, dto.Scope)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	h.WriteJSON(w, http.StatusOK, AccessTokenResponse{
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.Lifetime().Seconds()),
		AccessToken: token,
	})
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's id and scopes in the request context for downstream
// permission checks.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := h.ExtractTokenFromHeader(r)
		if raw == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError())
			return
		}

		claims, err := h.tokens.Validate(raw)
		if err != nil {
			h.WriteAppError(w, internal.NewUnauthorizedError().WithCause(err))
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), claims.UID)
		ctx = internal.ContextWithScopes(ctx, claims.Scopes)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
