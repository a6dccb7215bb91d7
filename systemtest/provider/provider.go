// Package provider runs an in-process stand-in for the MoMo sandbox provisioning API.
// It keeps users and issued keys in memory so multi-step scenarios behave like the
// real service: unknown ids are 404, duplicate ids are 409 and stale keys are 401.
package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type apiUser struct {
	callbackHost      string
	targetEnvironment string
	keys              map[string]bool
}

type Provider struct {
	subscriptionKey string
	server          *httptest.Server

	mu       sync.Mutex
	users    map[string]*apiUser
	requests []string
	issued   int
}

func Start(subscriptionKey string) *Provider {
	p := &Provider{
		subscriptionKey: subscriptionKey,
		users:           make(map[string]*apiUser),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1_0/apiuser", p.createUser)
	mux.HandleFunc("GET /v1_0/apiuser/{id}", p.getUser)
	mux.HandleFunc("POST /v1_0/apiuser/{id}/apikey", p.createKey)
	mux.HandleFunc("POST /{product}/token/{$}", p.issueToken)

	p.server = httptest.NewServer(p.authenticate(mux))
	return p
}

func (p *Provider) URL() string {
	return p.server.URL
}

func (p *Provider) Close() {
	p.server.Close()
}

// Requests returns "METHOD path" for every request seen, in arrival order.
func (p *Provider) Requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

func (p *Provider) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests = append(p.requests, r.Method+" "+r.URL.Path)
		p.mu.Unlock()

		if r.Header.Get("Ocp-Apim-Subscription-Key") != p.subscriptionKey {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access denied due to invalid subscription key.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Provider) createUser(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get("X-Reference-Id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REFERENCE_ID", "X-Reference-Id must be a UUID.")
		return
	}

	var body struct {
		ProviderCallbackHost string `json:"providerCallbackHost"`
		TargetEnvironment    string `json:"targetEnvironment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProviderCallbackHost == "" {
		writeError(w, http.StatusBadRequest, "INVALID_CALLBACK_URL_HOST", "providerCallbackHost is required.")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.users[id]; exists {
		writeError(w, http.StatusConflict, "RESOURCE_ALREADY_EXIST", "Duplicated reference id, creation of resource failed.")
		return
	}
	p.users[id] = &apiUser{
		callbackHost:      body.ProviderCallbackHost,
		targetEnvironment: body.TargetEnvironment,
		keys:              make(map[string]bool),
	}
	w.WriteHeader(http.StatusCreated)
}

func (p *Provider) getUser(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	u, ok := p.users[r.PathValue("id")]
	p.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Requested resource was not found.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"providerCallbackHost": u.callbackHost,
		"targetEnvironment":    u.targetEnvironment,
	})
}

func (p *Provider) createKey(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Requested resource was not found.")
		return
	}
	key := strings.ReplaceAll(uuid.NewString(), "-", "")
	u.keys[key] = true
	writeJSON(w, http.StatusCreated, map[string]string{"apiKey": key})
}

func (p *Provider) issueToken(w http.ResponseWriter, r *http.Request) {
	id, key, ok := r.BasicAuth()
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing basic authentication.")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	u, exists := p.users[id]
	if !exists || !u.keys[key] {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user or API key.")
		return
	}
	p.issued++
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": fmt.Sprintf("%s-token-%d", r.PathValue("product"), p.issued),
		"token_type":   "access_token",
		"expires_in":   3600,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
