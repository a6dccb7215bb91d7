package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EternisAI/momo-provisioner/internal/api/http/dto"
	"github.com/EternisAI/momo-provisioner/internal/momo"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const stubUserID = "6f1b8a52-3c0e-4a57-9d8a-0f3a6c2e5b11"

type stubProvisioner struct {
	err       error
	key       momo.APIKey
	token     *momo.AccessToken
	user      *momo.APIUser
	tokenKeys []momo.APIKey
}

func (s *stubProvisioner) UserID() string { return stubUserID }

func (s *stubProvisioner) CreateAPIUser(context.Context) error { return s.err }

func (s *stubProvisioner) GetAPIUser(context.Context) (*momo.APIUser, error) {
	return s.user, s.err
}

func (s *stubProvisioner) CreateAPIKey(context.Context) (momo.APIKey, error) {
	return s.key, s.err
}

func (s *stubProvisioner) IssueAccessToken(_ context.Context, key momo.APIKey) (*momo.AccessToken, error) {
	s.tokenKeys = append(s.tokenKeys, key)
	return s.token, s.err
}

func (s *stubProvisioner) Bootstrap(context.Context) (*momo.AccessToken, error) {
	return s.token, s.err
}

func setupProvisioningRouter(h *ProvisioningHandler) *gin.Engine {
	r := gin.New()
	r.POST("/api/v1/apiuser", h.CreateAPIUser)
	r.GET("/api/v1/apiuser", h.GetAPIUser)
	r.POST("/api/v1/apikey", h.CreateAPIKey)
	r.POST("/api/v1/token", h.IssueAccessToken)
	r.POST("/api/v1/bootstrap", h.Bootstrap)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAPIUserHandler(t *testing.T) {
	r := setupProvisioningRouter(NewProvisioningHandler(&stubProvisioner{}))

	w := doRequest(r, "POST", "/api/v1/apiuser", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.APIUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, stubUserID, resp.UserID)
}

func TestGetAPIUserHandler(t *testing.T) {
	stub := &stubProvisioner{user: &momo.APIUser{
		UserID:               stubUserID,
		ProviderCallbackHost: "webhook.example.com",
		TargetEnvironment:    "sandbox",
	}}
	r := setupProvisioningRouter(NewProvisioningHandler(stub))

	w := doRequest(r, "GET", "/api/v1/apiuser", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "webhook.example.com", resp.ProviderCallbackHost)
	assert.Equal(t, "sandbox", resp.TargetEnvironment)
}

func TestCreateAPIKeyHandler(t *testing.T) {
	r := setupProvisioningRouter(NewProvisioningHandler(&stubProvisioner{key: "K1"}))

	w := doRequest(r, "POST", "/api/v1/apikey", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.APIKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "K1", resp.APIKey)
	assert.Equal(t, stubUserID, resp.UserID)
}

func TestIssueAccessTokenHandler(t *testing.T) {
	stub := &stubProvisioner{token: &momo.AccessToken{Value: "T1", TokenType: "access_token", ExpiresIn: 3600}}
	r := setupProvisioningRouter(NewProvisioningHandler(stub))

	w := doRequest(r, "POST", "/api/v1/token", dto.TokenRequest{APIKey: "K1"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "T1", resp.AccessToken)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, []momo.APIKey{"K1"}, stub.tokenKeys)
}

func TestIssueAccessTokenHandlerMissingKey(t *testing.T) {
	stub := &stubProvisioner{}
	r := setupProvisioningRouter(NewProvisioningHandler(stub))

	w := doRequest(r, "POST", "/api/v1/token", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, stub.tokenKeys)
}

func TestBootstrapHandler(t *testing.T) {
	stub := &stubProvisioner{token: &momo.AccessToken{Value: "T1"}}
	r := setupProvisioningRouter(NewProvisioningHandler(stub))

	w := doRequest(r, "POST", "/api/v1/bootstrap", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "T1", resp.AccessToken)
}

func TestBootstrapHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{
			name:     "not found",
			err:      &momo.Error{Op: "create api key", Kind: momo.NotFound, StatusCode: 404, Code: "RESOURCE_NOT_FOUND"},
			wantCode: http.StatusNotFound,
			wantKind: "NotFound",
		},
		{
			name:     "bad request",
			err:      &momo.Error{Op: "create api key", Kind: momo.BadRequest, StatusCode: 400},
			wantCode: http.StatusBadRequest,
			wantKind: "BadRequest",
		},
		{
			name:     "remote internal",
			err:      &momo.Error{Op: "issue access token", Kind: momo.RemoteInternalError, StatusCode: 500},
			wantCode: http.StatusBadGateway,
			wantKind: "RemoteInternalError",
		},
		{
			name:     "transport",
			err:      &momo.Error{Op: "issue access token", Kind: momo.TransportError, Err: errors.New("timeout")},
			wantCode: http.StatusGatewayTimeout,
			wantKind: "TransportError",
		},
		{
			name:     "unknown",
			err:      fmt.Errorf("wrapped: %w", &momo.Error{Op: "issue access token", Kind: momo.UnknownRemoteError, StatusCode: 401}),
			wantCode: http.StatusBadGateway,
			wantKind: "UnknownRemoteError",
		},
		{
			name:     "foreign error",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupProvisioningRouter(NewProvisioningHandler(&stubProvisioner{err: tt.err}))

			w := doRequest(r, "POST", "/api/v1/bootstrap", nil)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestInvalidConfigIsBadRequest(t *testing.T) {
	stub := &stubProvisioner{err: fmt.Errorf("%w: callback_host is required", momo.ErrInvalidConfig)}
	r := setupProvisioningRouter(NewProvisioningHandler(stub))

	w := doRequest(r, "POST", "/api/v1/apiuser", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
