package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
)

const (
	headerReferenceID     = "X-Reference-Id"
	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"

	opCreateAPIUser    = "create api user"
	opGetAPIUser       = "get api user"
	opCreateAPIKey     = "create api key"
	opIssueAccessToken = "issue access token"

	maxResponseBody = 1 << 20
)

// Provisioner drives the credential bootstrap for a single API user. Each step is one
// HTTP request with no retries and no state carried between calls.
type Provisioner struct {
	cfg        Config
	httpClient *http.Client
}

type Option func(*Provisioner)

// WithHTTPClient replaces the default client. Config.Timeout is ignored when set.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provisioner) {
		if c != nil {
			p.httpClient = c
		}
	}
}

func NewProvisioner(cfg Config, opts ...Option) (*Provisioner, error) {
	cfg.Headers = maps.Clone(cfg.Headers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	p := &Provisioner{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Provisioner) UserID() string {
	return p.cfg.UserID
}

// CreateAPIUser registers the configured reference id with the provider.
func (p *Provisioner) CreateAPIUser(ctx context.Context) error {
	if err := p.cfg.validateCallback(); err != nil {
		return err
	}

	payload, err := json.Marshal(createUserRequest{
		ProviderCallbackHost: p.cfg.CallbackHost,
		TargetEnvironment:    p.cfg.TargetEnvironment,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/v1_0/apiuser", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set(headerReferenceID, p.cfg.UserID)
	req.Header.Set("Content-Type", "application/json")

	if _, _, err := p.do(req, opCreateAPIUser); err != nil {
		return err
	}

	slog.Info("API user created", "user_id", p.cfg.UserID, "target_environment", p.cfg.TargetEnvironment)
	return nil
}

// GetAPIUser fetches the registration stored for the reference id.
func (p *Provisioner) GetAPIUser(ctx context.Context) (*APIUser, error) {
	req, err := p.newRequest(ctx, http.MethodGet, p.userPath(), nil)
	if err != nil {
		return nil, err
	}

	status, body, err := p.do(req, opGetAPIUser)
	if err != nil {
		return nil, err
	}

	var resp apiUserResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newDecodeError(opGetAPIUser, status, err)
	}

	return &APIUser{
		UserID:               p.cfg.UserID,
		ProviderCallbackHost: resp.ProviderCallbackHost,
		TargetEnvironment:    resp.TargetEnvironment,
	}, nil
}

// CreateAPIKey issues a new secret for the registered user. Every call yields a fresh key.
func (p *Provisioner) CreateAPIKey(ctx context.Context) (APIKey, error) {
	req, err := p.newRequest(ctx, http.MethodPost, p.userPath()+"/apikey", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := p.do(req, opCreateAPIKey)
	if err != nil {
		return "", err
	}

	var resp apiKeyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newDecodeError(opCreateAPIKey, status, err)
	}
	if resp.APIKey == "" {
		return "", newDecodeError(opCreateAPIKey, status, errors.New("response has no apiKey"))
	}

	slog.Info("API key issued", "user_id", p.cfg.UserID)
	return APIKey(resp.APIKey), nil
}

// IssueAccessToken exchanges key for a bearer token using basic auth of userId:key.
func (p *Provisioner) IssueAccessToken(ctx context.Context, key APIKey) (*AccessToken, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/"+p.cfg.Product+"/token/", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.cfg.UserID, string(key))

	status, body, err := p.do(req, opIssueAccessToken)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newDecodeError(opIssueAccessToken, status, err)
	}
	if resp.AccessToken == "" {
		return nil, newDecodeError(opIssueAccessToken, status, errors.New("response has no access_token"))
	}

	slog.Info("Access token issued",
		"user_id", p.cfg.UserID,
		"product", p.cfg.Product,
		"expires_in", resp.ExpiresIn)

	return &AccessToken{
		Value:     resp.AccessToken,
		TokenType: resp.TokenType,
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

// Bootstrap creates an API key and exchanges it for a token. The user must already exist;
// CreateAPIUser is not called.
func (p *Provisioner) Bootstrap(ctx context.Context) (*AccessToken, error) {
	key, err := p.CreateAPIKey(ctx)
	if err != nil {
		return nil, err
	}
	return p.IssueAccessToken(ctx, key)
}

// Provision runs all three steps. A user created before a later failure is left in place.
func (p *Provisioner) Provision(ctx context.Context) (*AccessToken, error) {
	if err := p.CreateAPIUser(ctx); err != nil {
		return nil, err
	}
	return p.Bootstrap(ctx)
}

func (p *Provisioner) userPath() string {
	return "/v1_0/apiuser/" + url.PathEscape(p.cfg.UserID)
}

func (p *Provisioner) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for name, value := range p.cfg.Headers {
		req.Header.Set(name, value)
	}
	req.Header.Set(headerSubscriptionKey, p.cfg.SubscriptionKey)
	return req, nil
}

func (p *Provisioner) do(req *http.Request, op string) (int, []byte, error) {
	slog.Debug("Calling provider", "op", op, "method", req.Method, "url", req.URL.String())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Warn("Provider request failed", "op", op, "kind", TransportError, "error", err)
		return 0, nil, newTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		slog.Warn("Failed to read provider response", "op", op, "status_code", resp.StatusCode, "error", err)
		return resp.StatusCode, nil, newTransportError(op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := newStatusError(op, resp.StatusCode, body)
		slog.Warn("Provider rejected request",
			"op", op,
			"kind", e.Kind,
			"status_code", resp.StatusCode,
			"code", e.Code)
		return resp.StatusCode, body, e
	}

	slog.Info("Provider responded", "op", op, "status_code", resp.StatusCode, "content_length", len(body))
	return resp.StatusCode, body, nil
}
