package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/sciadvances/catalog-api/internal/auth"
	"github.com/sciadvances/catalog-api/internal/element"
	"github.com/sciadvances/catalog-api/internal/transport/middleware"
	"github.com/sciadvances/catalog-api/internal/transport/swagger"
	"github.com/sciadvances/catalog-api/internal/user"
)

// RegisterAllRoutes wires the full API surface onto router. The element
// handlers each carry their own kind; the relationship sub-routes are
// derived from the kind's counterparts so every pair gets both directions.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, elementHandlers []*element.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and swagger UI at root, outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	options := allowHandler(router)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/access_token", authHandler.AccessToken)
		r.Options("/access_token", options)

		for _, h := range elementHandlers {
			registerElementRoutes(r, authHandler, h, options)
		}

		registerUserRoutes(r, authHandler, userHandler, options)
	})
}

// registerElementRoutes mounts one catalog kind: collection, single
// resource, existence probe and the relationship sub-routes toward the two
// counterpart kinds. Everything except the probe and OPTIONS sits behind the
// bearer-token middleware; scope checks live in the handlers because the
// failure status depends on the verb.
func registerElementRoutes(r chi.Router, authHandler *auth.Handler, h *element.Handler, options http.HandlerFunc) {
	kind := h.Service.Kind()

	r.Route("/"+kind.Plural(), func(kr chi.Router) {
		kr.Options("/", options)
		kr.Options("/{id}", options)
		kr.Get("/name/{name}", h.ExistsByName)

		kr.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/", h.List)
			pr.Post("/", h.Create)
			pr.Get("/{id}", h.Get)
			pr.Put("/{id}", h.Update)
			pr.Delete("/{id}", h.Delete)

			for _, other := range kind.Counterparts() {
				pr.Get("/{id}/"+other.Plural(), h.RelatedHandler(other))
				pr.Put("/{id}/"+other.Plural()+"/add/{otherId}", h.EdgeHandler(other, true))
				pr.Put("/{id}/"+other.Plural()+"/rem/{otherId}", h.EdgeHandler(other, false))
			}
		})
	})
}

func registerUserRoutes(r chi.Router, authHandler *auth.Handler, h *user.Handler, options http.HandlerFunc) {
	r.Route("/users", func(ur chi.Router) {
		ur.Options("/", options)
		ur.Options("/{id}", options)
		ur.Get("/username/{username}", h.ExistsByUsername)

		ur.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/", h.List)
			pr.Post("/", h.Create)
			pr.Get("/{id}", h.Get)
			pr.Put("/{id}", h.Update)
			pr.Delete("/{id}", h.Delete)
		})
	})
}

// allowHandler answers OPTIONS by probing the router for every method the
// requested path responds to, so the Allow header tracks the real route
// table instead of a hand-maintained list.
func allowHandler(mux *chi.Mux) http.HandlerFunc {
	probe := []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodDelete, http.MethodOptions,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range probe {
			rctx := chi.NewRouteContext()
			if mux.Match(rctx, method, r.URL.Path) {
				allowed = append(allowed, method)
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		w.WriteHeader(http.StatusNoContent)
	}
}
