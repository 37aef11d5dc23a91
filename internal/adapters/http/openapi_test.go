package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// loadOpenAPISpec finds api/openapi.yaml by walking up from the test directory.
func loadOpenAPISpec(t *testing.T) *openapi3.T {
	t.Helper()
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if data, err := os.ReadFile(candidate); err == nil {
			loader := &openapi3.Loader{IsExternalRefsAllowed: false}
			spec, err := loader.LoadFromData(data)
			if err != nil {
				t.Fatalf("failed to parse OpenAPI spec: %v", err)
			}
			return spec
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return nil
}

func TestOpenAPISpec(t *testing.T) {
	spec := loadOpenAPISpec(t)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/drafts",
		"/v1/drafts/{id}",
		"/v1/drafts/{id}/locate",
		"/v1/drafts/{id}/search",
		"/v1/drafts/{id}/select",
		"/v1/drafts/{id}/coordinate",
		"/v1/drafts/{id}/description",
		"/v1/drafts/{id}/submit",
		"/v1/places/search",
		"/v1/reports",
		"/graphql",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	expectedSchemas := []string{
		"Coordinate",
		"MapView",
		"Place",
		"Alert",
		"Draft",
		"DraftResponse",
		"SubmitResponse",
		"Report",
		"Pagination",
		"APIError",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

func TestOpenAPIInfo(t *testing.T) {
	spec := loadOpenAPISpec(t)

	if spec.Info.Title != "Crime Report API" {
		t.Errorf("expected title 'Crime Report API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

func TestDocs_ServesOpenAPI(t *testing.T) {
	env := setupApp(t, "")
	resp, b := env.do(t, "GET", "/docs/openapi.yaml", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(b) == 0 {
		t.Error("expected a non-empty document")
	}
}
