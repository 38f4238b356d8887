package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/knowledge/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/knowledge/search", "200"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/v1/knowledge/search", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/knowledge/search", "200"))
	if after-before != 1 {
		t.Errorf("http_requests_total delta = %v, want 1", after-before)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in-flight = %v after request, want 0", v)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/bad", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadRequest) })
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK)
	})

	for path, want := range map[string]string{"/ok": "200", "/bad": "400", "/boom": "500"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest("GET", path, http.NoBody))
			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", path, want)); v < 1 {
				t.Errorf("requests_total{%s,%s} = %v", path, want, v)
			}
		})
	}
}

func TestRouteLabel_NoChiContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/x", http.NoBody)); got != "unmatched" {
		t.Errorf("routeLabel() = %q", got)
	}
}

func TestRegisterAll_Idempotent(t *testing.T) {
	RegisterAll()
	RegisterAll()
	EmbeddingFallbacksTotal.WithLabelValues("error").Inc()
	if v := testutil.ToFloat64(EmbeddingFallbacksTotal.WithLabelValues("error")); v < 1 {
		t.Errorf("fallbacks = %v", v)
	}
}
