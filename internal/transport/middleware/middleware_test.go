package middleware_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/hrm/internal/infrastructure/redisstore"
	"github.com/frahmantamala/hrm/internal/transport"
	"github.com/frahmantamala/hrm/internal/transport/middleware"
	"github.com/frahmantamala/hrm/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("Throttle", func() {
	var (
		mr      *miniredis.Miniredis
		client  *redis.Client
		base    *transport.BaseHandler
		handler http.Handler
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(mr.Close)

		client = redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		DeferCleanup(client.Close)
		base = transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
		limiter := redisstore.NewFixedWindowLimiter(client, 2, time.Hour)
		handler = middleware.Throttle(limiter, "register", base)(ok)
	})

	post := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	It("should return 429 once the client exceeds the limit", func() {
		Expect(post("10.0.0.1:5000").Code).To(Equal(http.StatusOK))
		Expect(post("10.0.0.1:5001").Code).To(Equal(http.StatusOK))

		w := post("10.0.0.1:5002")
		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
		Expect(errorCode(w)).To(Equal("TOO_MANY_REQUESTS"))
		Expect(w.Header().Get("Retry-After")).NotTo(BeEmpty())
	})

	It("should count clients separately", func() {
		post("10.0.0.1:5000")
		post("10.0.0.1:5000")

		Expect(post("10.0.0.2:5000").Code).To(Equal(http.StatusOK))
	})

	It("should fail open when redis is unavailable", func() {
		mr.Close()

		Expect(post("10.0.0.1:5000").Code).To(Equal(http.StatusOK))
	})

	It("should pass through without a limiter", func() {
		handler = middleware.Throttle(nil, "register", base)(ok)

		for i := 0; i < 5; i++ {
			Expect(post("10.0.0.1:5000").Code).To(Equal(http.StatusOK))
		}
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should mask credentials in logged bodies and headers", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, nil))

		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("hunter22"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"access":"aaa.bbb.ccc","refresh":"ddd.eee.fff"}`))
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"email":"a@x.com","password":"hunter22","nested":{"verification_code":"AB12CD"}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-token")
		req = req.WithContext(logger.NewContext(context.Background(), lg))
		w := httptest.NewRecorder()

		middleware.LoggingMiddleware(echo).ServeHTTP(w, req)

		Expect(w.Body.String()).To(ContainSubstring("aaa.bbb.ccc"))
		logged := buf.String()
		Expect(logged).To(ContainSubstring("a@x.com"))
		Expect(logged).NotTo(ContainSubstring("hunter22"))
		Expect(logged).NotTo(ContainSubstring("AB12CD"))
		Expect(logged).NotTo(ContainSubstring("secret-token"))
		Expect(logged).NotTo(ContainSubstring("aaa.bbb.ccc"))
		Expect(logged).NotTo(ContainSubstring("ddd.eee.fff"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should answer a panic with a generic 500", func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("database password is hunter22")
		})

		w := httptest.NewRecorder()
		middleware.RecoveryMiddleware(lg)(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(errorCode(w)).To(Equal("INTERNAL_ERROR"))
		Expect(w.Body.String()).NotTo(ContainSubstring("hunter22"))
	})
})

var _ = Describe("RequestID", func() {
	It("should echo an incoming trace id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceIDHeader, "trace-1")
		w := httptest.NewRecorder()

		middleware.RequestID(ok).ServeHTTP(w, req)

		Expect(w.Header().Get(middleware.TraceIDHeader)).To(Equal("trace-1"))
	})

	It("should mint one when absent", func() {
		w := httptest.NewRecorder()

		middleware.RequestID(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(w.Header().Get(middleware.TraceIDHeader)).To(HaveLen(36))
	})
})

var _ = Describe("CORS", func() {
	cors := middleware.CORS("https://app.example.com, https://admin.example.com")

	It("should answer preflight requests for allowed origins", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/teams", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		cors(ok).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
		Expect(w.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("X-Client"))
	})

	It("should not echo unknown origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/teams", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		cors(ok).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})
})
