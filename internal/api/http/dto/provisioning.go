package dto

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Product string `json:"product,omitempty"`
}

type APIUserResponse struct {
	UserID               string `json:"user_id"`
	ProviderCallbackHost string `json:"provider_callback_host,omitempty"`
	TargetEnvironment    string `json:"target_environment,omitempty"`
}

type APIKeyResponse struct {
	UserID string `json:"user_id"`
	APIKey string `json:"api_key"`
}

type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type TokenResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

type ErrorResponse struct {
	Error        string `json:"error"`
	Kind         string `json:"kind,omitempty"`
	RemoteStatus int    `json:"remote_status,omitempty"`
	RemoteCode   string `json:"remote_code,omitempty"`
}
