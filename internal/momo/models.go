package momo

// APIKey is the secret issued for an API user. It lives only as long as the caller holds it.
type APIKey string

type AccessToken struct {
	Value     string
	TokenType string
	ExpiresIn int
}

type APIUser struct {
	UserID               string
	ProviderCallbackHost string
	TargetEnvironment    string
}

type createUserRequest struct {
	ProviderCallbackHost string `json:"providerCallbackHost"`
	TargetEnvironment    string `json:"targetEnvironment,omitempty"`
}

type apiKeyResponse struct {
	APIKey string `json:"apiKey"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type apiUserResponse struct {
	ProviderCallbackHost string `json:"providerCallbackHost"`
	TargetEnvironment    string `json:"targetEnvironment"`
}
