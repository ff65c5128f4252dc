package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

func TestPlanSearches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/plan-searches", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "surgical gloves", req["query"])

		json.NewEncoder(w).Encode(map[string]any{
			"websites": []string{"https://heymedsupply.com/", "https://mfimedical.com/"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	websites, err := c.PlanSearches(context.Background(), "surgical gloves")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://heymedsupply.com/", "https://mfimedical.com/"}, websites)
}

func TestSearchProductsTagsWebsite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"products": []map[string]string{
				{"name": "Nitrile Gloves", "price": "$12.99", "url": "https://a.example/p/1"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	products, err := c.SearchProducts(context.Background(), "gloves", "a.example")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "a.example", products[0].Website)
	assert.Equal(t, "Nitrile Gloves", products[0].Name)
}

func TestCheckComplianceSetsProductName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "file-1", req["document_id"])
		assert.Equal(t, "idx-1", req["index_id"])

		json.NewEncoder(w).Encode(map[string]any{
			"compliant":   true,
			"explanation": "meets nitrile requirement",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.CheckCompliance(context.Background(), models.Product{Name: "Nitrile Gloves"}, "file-1", "idx-1")
	require.NoError(t, err)
	assert.True(t, result.Compliant)
	assert.Equal(t, "Nitrile Gloves", result.ProductName)
}

func TestNon2xxSurfacesUpstreamBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Summarize(context.Background(), "some text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestIndexClientCreateAndAttach(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/indices":
			json.NewEncoder(w).Encode(map[string]string{"id": "idx-9"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/indices/idx-9/documents":
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "file-1", req["document_id"])
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewIndexClient(srv.URL)
	id, err := c.Create(context.Background(), "compliance_store")
	require.NoError(t, err)
	assert.Equal(t, "idx-9", id)

	err = c.Attach(context.Background(), id, "file-1", map[string]any{"type": "compliance"})
	assert.NoError(t, err)
}
