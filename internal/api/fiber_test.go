package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ortelius/pdvd-assess/database"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiberApp(t *testing.T) {
	store := database.NewMemoryStore()
	svc := &services.AssessmentService{
		Catalog:      services.NewCVEFetcher(""),
		Applications: store,
		Assessments:  store,
		Provider:     ai.FallbackProvider{},
	}

	app, err := NewFiberApp(store, svc, svc.Catalog)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pdvd_assess_reviews_required_total")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/applications", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
