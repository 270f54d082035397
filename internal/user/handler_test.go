package user_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/transport"
	"github.com/sciadvances/catalog-api/internal/user"
)

var _ = Describe("User Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		service := user.NewService(NewMockRepository(), bcrypt.MinCost, userTestLogger())
		handler := user.NewHandler(transport.NewBaseHandler(userTestLogger()), service)

		router = chi.NewRouter()
		router.Route("/users", func(ur chi.Router) {
			ur.Get("/username/{username}", handler.ExistsByUsername)
			ur.Get("/", handler.List)
			ur.Post("/", handler.Create)
			ur.Get("/{id}", handler.Get)
			ur.Put("/{id}", handler.Update)
			ur.Delete("/{id}", handler.Delete)
		})
	})

	do := func(method, path, body string, scopes []string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if scopes != nil {
			req = req.WithContext(internal.ContextWithScopes(context.Background(), scopes))
		}
		for name, value := range headers {
			req.Header.Set(name, value)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	reader := []string{"reader"}
	writer := []string{"reader", "writer"}

	createAlice := func() {
		rec := do("POST", "/users/", `{"username":"alice","email":"alice@example.com","password":"secret","role":"writer"}`, writer, nil)
		Expect(rec.Code).To(Equal(201))
	}

	It("answers 404 on an empty collection", func() {
		Expect(do("GET", "/users/", "", reader, nil).Code).To(Equal(404))
	})

	It("points Location at the created account regardless of a trailing slash", func() {
		rec := do("POST", "/users/", `{"username":"alice","email":"alice@example.com","password":"secret"}`, writer, nil)
		Expect(rec.Code).To(Equal(201))
		Expect(rec.Header().Get("Location")).To(Equal("/users/1"))

		rec = do("POST", "/users", `{"username":"bob","email":"bob@example.com","password":"secret"}`, writer, nil)
		Expect(rec.Code).To(Equal(201))
		Expect(rec.Header().Get("Location")).To(Equal("/users/2"))
	})

	It("wraps accounts without exposing password material", func() {
		createAlice()

		rec := do("GET", "/users/1", "", reader, nil)
		Expect(rec.Code).To(Equal(200))
		Expect(rec.Body.String()).NotTo(ContainSubstring("password"))

		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKey("user"))
		Expect(body["user"]["username"]).To(Equal("alice"))
		Expect(body["user"]["role"]).To(Equal("writer"))
	})

	It("probes usernames with 204/404 and no body", func() {
		createAlice()

		exists := do("GET", "/users/username/alice", "", nil, nil)
		Expect(exists.Code).To(Equal(204))
		Expect(exists.Body.Len()).To(BeZero())

		missing := do("GET", "/users/username/nobody", "", nil, nil)
		Expect(missing.Code).To(Equal(404))
	})

	It("answers 403 on create without the writer scope", func() {
		rec := do("POST", "/users/", `{"username":"alice","email":"a@example.com","password":"x"}`, reader, nil)
		Expect(rec.Code).To(Equal(403))
	})

	It("answers 422 on create with required fields missing", func() {
		rec := do("POST", "/users/", `{"username":"alice"}`, writer, nil)
		Expect(rec.Code).To(Equal(422))
	})

	It("remaps the missing writer scope to 404 on updates", func() {
		createAlice()
		rec := do("PUT", "/users/1", `{"name":"Alice"}`, reader, nil)
		Expect(rec.Code).To(Equal(404))
	})

	It("gates updates on If-Match and answers 209", func() {
		createAlice()

		get := do("GET", "/users/1", "", reader, nil)
		tag := get.Header().Get("ETag")
		Expect(tag).NotTo(BeEmpty())

		stale := do("PUT", "/users/1", `{"name":"Alice"}`, writer, nil)
		Expect(stale.Code).To(Equal(412))

		fresh := do("PUT", "/users/1", `{"name":"Alice"}`, writer, map[string]string{"If-Match": tag})
		Expect(fresh.Code).To(Equal(209))

		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(fresh.Body.Bytes(), &body)).To(Succeed())
		Expect(body["user"]["name"]).To(Equal("Alice"))
	})

	It("remaps the missing writer scope to 404 on deletes", func() {
		createAlice()
		Expect(do("DELETE", "/users/1", "", reader, nil).Code).To(Equal(404))
	})

	It("deletes with 204", func() {
		createAlice()
		Expect(do("DELETE", "/users/1", "", writer, nil).Code).To(Equal(204))
		Expect(do("GET", "/users/1", "", reader, nil).Code).To(Equal(404))
	})

	It("serves 304 when the collection is unchanged", func() {
		createAlice()

		first := do("GET", "/users/", "", reader, nil)
		tag := first.Header().Get("ETag")

		second := do("GET", "/users/", "", reader, map[string]string{"If-None-Match": tag})
		Expect(second.Code).To(Equal(304))
	})
})
