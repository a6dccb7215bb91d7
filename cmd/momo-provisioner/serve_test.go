package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	internalhttp "github.com/EternisAI/momo-provisioner/internal/api/http"
	"github.com/stretchr/testify/assert"
)

func TestNewEngineServesHealthWithCORS(t *testing.T) {
	engine := newEngine(&internalhttp.Services{Version: "1.2.3", Product: "collection"})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3","product":"collection"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEngineWithoutProvisionerHasNoAPI(t *testing.T) {
	engine := newEngine(&internalhttp.Services{})

	req := httptest.NewRequest("POST", "/api/v1/bootstrap", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
