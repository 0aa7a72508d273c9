// Package bridge resolves MCP tool calls into HTTP requests against the
// configured upstream API and shapes the responses into tool results.
package bridge

import (
	"encoding/base64"
	"net/http"

	"github.com/bobmcallan/apibridge/internal/catalog"
)

// Environment fallback variables consulted when auth_config omits the
// corresponding field. Explicit auth_config values always win.
const (
	envBearerToken   = "API_TOKEN"
	envBasicUsername = "API_USERNAME"
	envBasicPassword = "API_PASSWORD"
	envAPIKey        = "API_KEY"
)

// defaultAPIKeyHeader is used when auth_config does not name a header.
const defaultAPIKeyHeader = "X-API-Key"

// AuthHeaders resolves an endpoint's auth scheme into HTTP headers.
// The environment is injected as a lookup function so tests can pin it;
// production callers pass os.Getenv.
//
// Missing credentials are never an error at this layer: the request simply
// goes out unauthenticated and any rejection comes back as an upstream
// HTTP error.
func AuthHeaders(ep *catalog.Endpoint, getenv func(string) string) http.Header {
	headers := make(http.Header)

	switch ep.AuthType {
	case catalog.AuthBearer:
		token := configOrEnv(ep, "token", envBearerToken, getenv)
		if token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}

	case catalog.AuthBasic:
		username := configOrEnv(ep, "username", envBasicUsername, getenv)
		password := configOrEnv(ep, "password", envBasicPassword, getenv)
		if username != "" && password != "" {
			credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
			headers.Set("Authorization", "Basic "+credentials)
		}

	case catalog.AuthAPIKey:
		key := configOrEnv(ep, "key", envAPIKey, getenv)
		if key != "" {
			headerName := ep.AuthConfig["header"]
			if headerName == "" {
				headerName = defaultAPIKeyHeader
			}
			headers.Set(headerName, key)
		}
	}

	return headers
}

// configOrEnv returns the auth_config value for key, falling back to the
// given environment variable.
func configOrEnv(ep *catalog.Endpoint, key, envVar string, getenv func(string) string) string {
	if v := ep.AuthConfig[key]; v != "" {
		return v
	}
	return getenv(envVar)
}
