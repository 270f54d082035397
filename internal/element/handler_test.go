package element_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/element"
	"github.com/sciadvances/catalog-api/internal/transport"
)

var _ = Describe("Element Handler", func() {
	var (
		store  *MockStore
		router *chi.Mux
	)

	BeforeEach(func() {
		store = NewMockStore()
		graph := element.NewGraph(testLogger(),
			store.Repo(element.KindOrganization),
			store.Repo(element.KindPerson),
			store.Repo(element.KindProduct),
		)
		orgs := element.NewService(element.KindOrganization, graph, testLogger())
		persons := element.NewService(element.KindPerson, graph, testLogger())

		base := transport.NewBaseHandler(testLogger())
		orgHandler := element.NewHandler(base, orgs)
		personHandler := element.NewHandler(base, persons)

		router = chi.NewRouter()
		for _, h := range []*element.Handler{orgHandler, personHandler} {
			kind := h.Service.Kind()
			router.Route("/"+kind.Plural(), func(kr chi.Router) {
				kr.Get("/name/{name}", h.ExistsByName)
				kr.Get("/", h.List)
				kr.Post("/", h.Create)
				kr.Get("/{id}", h.Get)
				kr.Put("/{id}", h.Update)
				kr.Delete("/{id}", h.Delete)
				for _, other := range kind.Counterparts() {
					kr.Get("/{id}/"+other.Plural(), h.RelatedHandler(other))
					kr.Put("/{id}/"+other.Plural()+"/add/{otherId}", h.EdgeHandler(other, true))
					kr.Put("/{id}/"+other.Plural()+"/rem/{otherId}", h.EdgeHandler(other, false))
				}
			})
		}
	})

	do := func(method, path string, body string, scopes []string, headers map[string]string) *httptest.ResponseRecorder {
		var reader *strings.Reader
		if body == "" {
			reader = strings.NewReader("")
		} else {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
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

	errorBody := func(rec *httptest.ResponseRecorder) (int, string) {
		var body struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body.Code, body.Message
	}

	Describe("GET collection", func() {
		It("answers 404 with the fixed error body when empty", func() {
			rec := do("GET", "/organizations/", "", reader, nil)
			Expect(rec.Code).To(Equal(404))
			code, msg := errorBody(rec)
			Expect(code).To(Equal(404))
			Expect(msg).To(Equal(internal.StatusMessage(404)))
		})

		It("wraps the collection under the plural tag with an ETag", func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)

			rec := do("GET", "/organizations/", "", reader, nil)
			Expect(rec.Code).To(Equal(200))
			Expect(rec.Header().Get("ETag")).NotTo(BeEmpty())
			Expect(rec.Header().Get("Cache-Control")).To(Equal("private"))

			var body map[string]json.RawMessage
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKey("organizations"))
		})

		It("answers 304 when If-None-Match carries the current tag", func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)

			first := do("GET", "/organizations/", "", reader, nil)
			tag := first.Header().Get("ETag")

			second := do("GET", "/organizations/", "", reader, map[string]string{"If-None-Match": tag})
			Expect(second.Code).To(Equal(304))
			Expect(second.Body.Len()).To(BeZero())
		})
	})

	Describe("GET single", func() {
		It("wraps the element under the singular tag with its related ids", func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)

			rec := do("GET", "/organizations/1", "", reader, nil)
			Expect(rec.Code).To(Equal(200))

			var body map[string]map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKey("organization"))
			Expect(body["organization"]["name"]).To(Equal("Acme"))
			Expect(body["organization"]).To(HaveKey("persons"))
			Expect(body["organization"]).To(HaveKey("products"))
		})

		It("answers 404 for an unknown id", func() {
			rec := do("GET", "/organizations/99", "", reader, nil)
			Expect(rec.Code).To(Equal(404))
		})
	})

	Describe("name probe", func() {
		It("answers 204 with no body when the name exists", func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)

			rec := do("GET", "/organizations/name/Acme", "", nil, nil)
			Expect(rec.Code).To(Equal(204))
			Expect(rec.Body.Len()).To(BeZero())
		})

		It("answers 404 with no wrapped body otherwise", func() {
			rec := do("GET", "/organizations/name/Unknown", "", nil, nil)
			Expect(rec.Code).To(Equal(404))
		})
	})

	Describe("POST", func() {
		It("answers 403 without the writer scope", func() {
			rec := do("POST", "/organizations/", `{"name":"Acme"}`, reader, nil)
			Expect(rec.Code).To(Equal(403))
		})

		It("answers 201 with a Location header", func() {
			rec := do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
			Expect(rec.Code).To(Equal(201))
			Expect(rec.Header().Get("Location")).To(Equal("/organizations/1"))
		})

		It("builds the same Location without a trailing slash on the request path", func() {
			rec := do("POST", "/organizations", `{"name":"Globex"}`, writer, nil)
			Expect(rec.Code).To(Equal(201))
			Expect(rec.Header().Get("Location")).To(Equal("/organizations/1"))
		})

		It("answers 422 when the name is missing", func() {
			rec := do("POST", "/organizations/", `{"wikiUrl":"https://example.org"}`, writer, nil)
			Expect(rec.Code).To(Equal(422))
		})

		It("answers 400 on a duplicate name", func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
			rec := do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
			Expect(rec.Code).To(Equal(400))
		})
	})

	Describe("PUT", func() {
		var currentTag string

		BeforeEach(func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
			rec := do("GET", "/organizations/1", "", reader, nil)
			currentTag = rec.Header().Get("ETag")
		})

		It("answers 404 without the writer scope, hiding existence", func() {
			rec := do("PUT", "/organizations/1", `{"name":"Acme Corp"}`, reader, map[string]string{"If-Match": currentTag})
			Expect(rec.Code).To(Equal(404))
		})

		It("answers 412 without an If-Match header", func() {
			rec := do("PUT", "/organizations/1", `{"name":"Acme Corp"}`, writer, nil)
			Expect(rec.Code).To(Equal(412))
		})

		It("answers 209 with the updated body on a fresh tag", func() {
			rec := do("PUT", "/organizations/1", `{"name":"Acme Corp"}`, writer, map[string]string{"If-Match": currentTag})
			Expect(rec.Code).To(Equal(209))

			var body map[string]map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["organization"]["name"]).To(Equal("Acme Corp"))
		})

		It("rejects the stale tag after a successful update", func() {
			first := do("PUT", "/organizations/1", `{"name":"Acme Corp"}`, writer, map[string]string{"If-Match": currentTag})
			Expect(first.Code).To(Equal(209))

			second := do("PUT", "/organizations/1", `{"name":"Acme Inc"}`, writer, map[string]string{"If-Match": currentTag})
			Expect(second.Code).To(Equal(412))
		})

		It("answers 400 when renaming onto another element's name", func() {
			do("POST", "/organizations/", `{"name":"Globex"}`, writer, nil)
			rec := do("GET", "/organizations/2", "", reader, nil)
			tag := rec.Header().Get("ETag")

			put := do("PUT", "/organizations/2", `{"name":"Acme"}`, writer, map[string]string{"If-Match": tag})
			Expect(put.Code).To(Equal(400))
		})
	})

	Describe("DELETE", func() {
		BeforeEach(func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
		})

		It("answers 404 without the writer scope", func() {
			rec := do("DELETE", "/organizations/1", "", reader, nil)
			Expect(rec.Code).To(Equal(404))
		})

		It("answers 204 on success", func() {
			rec := do("DELETE", "/organizations/1", "", writer, nil)
			Expect(rec.Code).To(Equal(204))

			Expect(do("GET", "/organizations/1", "", reader, nil).Code).To(Equal(404))
		})
	})

	Describe("relationship routes", func() {
		BeforeEach(func() {
			do("POST", "/organizations/", `{"name":"Acme"}`, writer, nil)
			do("POST", "/persons/", `{"name":"Ada"}`, writer, nil)
		})

		It("answers 403 on edge mutation without the writer scope", func() {
			rec := do("PUT", "/organizations/1/persons/add/1", "", reader, nil)
			Expect(rec.Code).To(Equal(403))
		})

		It("links and lists from both sides", func() {
			rec := do("PUT", "/organizations/1/persons/add/1", "", writer, nil)
			Expect(rec.Code).To(Equal(209))

			var body map[string]map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["organization"]["persons"]).To(Equal([]interface{}{float64(1)}))

			list := do("GET", "/persons/1/organizations", "", reader, nil)
			Expect(list.Code).To(Equal(200))
			var related map[string][]map[string]interface{}
			Expect(json.Unmarshal(list.Body.Bytes(), &related)).To(Succeed())
			Expect(related["organizations"]).To(HaveLen(1))
		})

		It("unlinks idempotently", func() {
			do("PUT", "/organizations/1/persons/add/1", "", writer, nil)

			rec := do("PUT", "/organizations/1/persons/rem/1", "", writer, nil)
			Expect(rec.Code).To(Equal(209))

			again := do("PUT", "/organizations/1/persons/rem/1", "", writer, nil)
			Expect(again.Code).To(Equal(209))

			list := do("GET", "/organizations/1/persons", "", reader, nil)
			var related map[string][]map[string]interface{}
			Expect(json.Unmarshal(list.Body.Bytes(), &related)).To(Succeed())
			Expect(related["persons"]).To(BeEmpty())
		})

		It("answers 406 for a missing counterpart", func() {
			rec := do("PUT", "/organizations/1/persons/add/99", "", writer, nil)
			Expect(rec.Code).To(Equal(406))
		})

		It("answers 404 for a missing owner", func() {
			rec := do("PUT", "/organizations/99/persons/add/1", "", writer, nil)
			Expect(rec.Code).To(Equal(404))
		})
	})

	It("ignores unknown payload fields", func() {
		rec := do("POST", "/organizations/", `{"name":"Acme","unknown":42}`, writer, nil)
		Expect(rec.Code).To(Equal(201))
	})

	It("answers 405 for verbs outside the route table", func() {
		rec := do("PATCH", "/organizations/1", "", writer, nil)
		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
