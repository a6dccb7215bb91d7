package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/momo-provisioner/internal/api/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T, router *gin.Engine) {
	rr := doJSON(router, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

// TestCredentialBootstrap walks one reference id through the provider's lifecycle.
func TestCredentialBootstrap(t *testing.T, router *gin.Engine, adminKey string) {
	t.Run("bootstrap before user exists", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/bootstrap", nil, adminKey)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "NotFound", resp.Kind)
		assert.Equal(t, "RESOURCE_NOT_FOUND", resp.RemoteCode)
	})

	t.Run("create user", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/apiuser", nil, adminKey)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("create user twice is rejected", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/apiuser", nil, adminKey)
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "UnknownRemoteError", resp.Kind)
		assert.Equal(t, http.StatusConflict, resp.RemoteStatus)
	})

	t.Run("get user", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/v1/apiuser", nil, adminKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.APIUserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "sandbox", resp.TargetEnvironment)
		assert.NotEmpty(t, resp.ProviderCallbackHost)
	})

	t.Run("bootstrap", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/bootstrap", nil, adminKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TokenResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, 3600, resp.ExpiresIn)
	})

	t.Run("step by step", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/apikey", nil, adminKey)
		require.Equal(t, http.StatusCreated, rr.Code)
		var first dto.APIKeyResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))

		rr = doJSON(router, "POST", "/api/v1/apikey", nil, adminKey)
		require.Equal(t, http.StatusCreated, rr.Code)
		var second dto.APIKeyResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
		assert.NotEqual(t, first.APIKey, second.APIKey)

		rr = doJSON(router, "POST", "/api/v1/token", dto.TokenRequest{APIKey: second.APIKey}, adminKey)
		require.Equal(t, http.StatusOK, rr.Code)
		var token dto.TokenResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))
		assert.NotEmpty(t, token.AccessToken)
	})

	t.Run("token with unknown key", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/v1/token", dto.TokenRequest{APIKey: "not-a-key"}, adminKey)
		assert.Equal(t, http.StatusBadGateway, rr.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusUnauthorized, resp.RemoteStatus)
	})
}

func doJSON(router *gin.Engine, method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}
