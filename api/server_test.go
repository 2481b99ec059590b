package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"bookshelf-api/pkg/featureflags"
)

func TestNewAPI(t *testing.T) {
	api, router := NewAPI()

	if api == nil {
		t.Error("NewAPI returned nil API")
	}
	if router == nil {
		t.Error("NewAPI returned nil router")
	}
}

func TestNewAPI_Info(t *testing.T) {
	api, _ := NewAPI()

	info := api.OpenAPI().Info
	if info.Title != "Bookshelf API" {
		t.Errorf("API title = %s, want Bookshelf API", info.Title)
	}
	if info.Version != "1.0.0" {
		t.Errorf("API version = %s, want 1.0.0", info.Version)
	}
}

func TestAPI_OpenAPIEndpoint(t *testing.T) {
	_, router := NewAPI()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/openapi.json", nil))

	if w.Code != http.StatusOK {
		t.Errorf("OpenAPI endpoint status = %d, want %d", w.Code, http.StatusOK)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.oai.openapi+json" {
		t.Errorf("OpenAPI content-type = %s, want application/vnd.oai.openapi+json", ct)
	}
}

func TestAPI_FlagsReachHandlers(t *testing.T) {
	flags := featureflags.NewStaticManager(map[featureflags.FeatureFlag]bool{featureflags.SimpleSearch: true})
	api, router := NewAPIWithMiddleware(APIConfig{Flags: flags})

	type out struct {
		Body struct {
			Simple bool `json:"simple"`
		}
	}
	huma.Get(api, "/flag", func(ctx context.Context, _ *struct{}) (*out, error) {
		o := &out{}
		o.Body.Simple = featureflags.IsEnabled(ctx, featureflags.SimpleSearch)
		return o, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/flag", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, `"simple":true`) {
		t.Errorf("flag not visible to handler, body = %s", body)
	}
}

func TestAPI_CORSAllowedOrigins(t *testing.T) {
	_, router := NewAPIWithMiddleware(APIConfig{AllowedOrigins: []string{"https://reader.example"}})

	req := httptest.NewRequest("GET", "/openapi.json", nil)
	req.Header.Set("Origin", "https://reader.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://reader.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want https://reader.example", got)
	}

	req = httptest.NewRequest("GET", "/openapi.json", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q for unlisted origin", got)
	}
}
