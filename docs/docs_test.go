package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfo(t *testing.T) {
	if SwaggerInfo.Title != "Stocksage API" {
		t.Fatalf("unexpected title: %s", SwaggerInfo.Title)
	}
	if SwaggerInfo.Version == "" {
		t.Fatal("expected a version")
	}
}

func TestDocTemplateCoversRoutes(t *testing.T) {
	for _, route := range []string{
		"/health",
		"/api/quotes",
		"/api/quotes/{symbol}",
		"/api/history/{symbol}",
		"/api/forecast/{symbol}",
		"/api/analyze/{symbol}",
		"/api/reports/{symbol}",
	} {
		if !strings.Contains(docTemplate, `"`+route+`"`) {
			t.Fatalf("expected docs to describe %s", route)
		}
	}
}
