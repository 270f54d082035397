package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/auth"
	"github.com/sciadvances/catalog-api/internal/transport"
	"github.com/sciadvances/catalog-api/internal/user"
)

var _ = Describe("Auth Handler", func() {
	var (
		handler *auth.Handler
		tokens  *auth.JWTTokenService
	)

	BeforeEach(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).NotTo(HaveOccurred())
		tokens = auth.NewJWTTokenService(key, &key.PublicKey, "catalog-api", "catalog-api-client", time.Hour)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo := NewMockUserRepository()
		repo.AddUser(&user.User{
			ID:           1,
			Username:     "alice",
			PasswordHash: string(hash),
			Role:         user.MustRole("writer"),
			Active:       true,
		})
		repo.AddUser(&user.User{
			ID:           2,
			Username:     "mallory",
			PasswordHash: string(hash),
			Role:         user.MustRole("reader"),
			Active:       false,
		})

		service := auth.NewService(repo, tokens, testLogger())
		handler = auth.NewHandler(transport.NewBaseHandler(testLogger()), service, tokens)
	})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/access_token", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.AccessToken(rec, req)
		return rec
	}

	Describe("AccessToken", func() {
		It("grants a token for valid credentials", func() {
			rec := login(`{"username":"alice","password":"correct","scope":"reader writer"}`)
			Expect(rec.Code).To(Equal(200))
			Expect(rec.Header().Get("Cache-Control")).To(Equal("no-store"))
			Expect(rec.Header().Get("Authorization")).To(HavePrefix("Bearer "))

			var body auth.AccessTokenResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.TokenType).To(Equal("Bearer"))
			Expect(body.ExpiresIn).To(Equal(int64(3600)))

			claims, err := tokens.Validate(body.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Scopes).To(ConsistOf("reader", "writer"))
		})

		It("answers 404 for a wrong password", func() {
			rec := login(`{"username":"alice","password":"wrong"}`)
			Expect(rec.Code).To(Equal(404))

			var body struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Code).To(Equal(404))
			Expect(body.Message).To(Equal(internal.StatusMessage(404)))
		})

		It("answers 404 for an unknown username", func() {
			rec := login(`{"username":"nobody","password":"correct"}`)
			Expect(rec.Code).To(Equal(404))
		})

		It("answers 403 for an inactive account", func() {
			rec := login(`{"username":"mallory","password":"correct"}`)
			Expect(rec.Code).To(Equal(403))
		})

		It("answers 404 for an unreadable body", func() {
			rec := login(`not json`)
			Expect(rec.Code).To(Equal(404))
		})
	})

	Describe("AuthMiddleware", func() {
		var protected http.Handler

		BeforeEach(func() {
			protected = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if uid := internal.UserIDFromContext(r.Context()); uid != 0 {
					w.Header().Set("X-Uid-Seen", strconv.FormatInt(uid, 10))
				}
				if internal.HasScope(r.Context(), user.RoleWriter) {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
		})

		It("rejects requests without a bearer token", func() {
			req := httptest.NewRequest("GET", "/organizations", nil)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(401))
		})

		It("rejects garbage tokens", func() {
			req := httptest.NewRequest("GET", "/organizations", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(401))
		})

		It("stashes the caller id and granted scopes in the request context", func() {
			raw, err := tokens.Issue(&user.User{ID: 1, Username: "alice", Role: user.MustRole("writer"), Active: true}, nil)
			Expect(err).NotTo(HaveOccurred())

			req := httptest.NewRequest("GET", "/organizations", nil)
			req.Header.Set("Authorization", "Bearer "+raw)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(204))
			Expect(rec.Header().Get("X-Uid-Seen")).To(Equal("1"))
		})
	})
})
