package bridge

import (
	"encoding/base64"
	"testing"

	"github.com/bobmcallan/apibridge/internal/catalog"
)

// noEnv is an environment lookup with nothing set.
func noEnv(string) string { return "" }

// envWith returns a lookup backed by the given map.
func envWith(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestAuthHeaders_BearerFromConfig(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthBearer,
		AuthConfig: map[string]string{"token": "abc"},
	}

	headers := AuthHeaders(ep, noEnv)
	if got := headers.Get("Authorization"); got != "Bearer abc" {
		t.Errorf("Expected 'Bearer abc', got %q", got)
	}
}

func TestAuthHeaders_BearerEnvFallback(t *testing.T) {
	ep := &catalog.Endpoint{AuthType: catalog.AuthBearer}

	headers := AuthHeaders(ep, envWith(map[string]string{"API_TOKEN": "from-env"}))
	if got := headers.Get("Authorization"); got != "Bearer from-env" {
		t.Errorf("Expected 'Bearer from-env', got %q", got)
	}
}

func TestAuthHeaders_BearerConfigWinsOverEnv(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthBearer,
		AuthConfig: map[string]string{"token": "explicit"},
	}

	headers := AuthHeaders(ep, envWith(map[string]string{"API_TOKEN": "from-env"}))
	if got := headers.Get("Authorization"); got != "Bearer explicit" {
		t.Errorf("Explicit config must win over env, got %q", got)
	}
}

func TestAuthHeaders_BearerMissingToken(t *testing.T) {
	ep := &catalog.Endpoint{AuthType: catalog.AuthBearer}

	headers := AuthHeaders(ep, noEnv)
	if len(headers) != 0 {
		t.Errorf("Expected no headers when token unavailable, got %v", headers)
	}
}

func TestAuthHeaders_Basic(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthBasic,
		AuthConfig: map[string]string{"username": "alice", "password": "s3cret"},
	}

	headers := AuthHeaders(ep, noEnv)
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
	if got := headers.Get("Authorization"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestAuthHeaders_BasicMixedSources(t *testing.T) {
	// Username from config, password from env fallback.
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthBasic,
		AuthConfig: map[string]string{"username": "alice"},
	}

	headers := AuthHeaders(ep, envWith(map[string]string{"API_PASSWORD": "hunter2"}))
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:hunter2"))
	if got := headers.Get("Authorization"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestAuthHeaders_BasicMissingEitherCredential(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthBasic,
		AuthConfig: map[string]string{"username": "alice"},
	}

	headers := AuthHeaders(ep, noEnv)
	if len(headers) != 0 {
		t.Errorf("Expected no headers when password missing, got %v", headers)
	}
}

func TestAuthHeaders_APIKeyDefaultHeader(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthAPIKey,
		AuthConfig: map[string]string{"key": "k-123"},
	}

	headers := AuthHeaders(ep, noEnv)
	if got := headers.Get("X-API-Key"); got != "k-123" {
		t.Errorf("Expected X-API-Key k-123, got %q", got)
	}
}

func TestAuthHeaders_APIKeyCustomHeader(t *testing.T) {
	ep := &catalog.Endpoint{
		AuthType:   catalog.AuthAPIKey,
		AuthConfig: map[string]string{"key": "k-123", "header": "X-Custom-Key"},
	}

	headers := AuthHeaders(ep, noEnv)
	if got := headers.Get("X-Custom-Key"); got != "k-123" {
		t.Errorf("Expected X-Custom-Key k-123, got %q", got)
	}
	if headers.Get("X-API-Key") != "" {
		t.Error("Default header must not be set when a custom header is named")
	}
}

func TestAuthHeaders_APIKeyEnvFallback(t *testing.T) {
	ep := &catalog.Endpoint{AuthType: catalog.AuthAPIKey}

	headers := AuthHeaders(ep, envWith(map[string]string{"API_KEY": "env-key"}))
	if got := headers.Get("X-API-Key"); got != "env-key" {
		t.Errorf("Expected env-key, got %q", got)
	}
}

func TestAuthHeaders_None(t *testing.T) {
	// "none" is normalized to the empty auth type at catalog load.
	ep := &catalog.Endpoint{AuthType: catalog.AuthNone}

	headers := AuthHeaders(ep, envWith(map[string]string{"API_TOKEN": "abc"}))
	if len(headers) != 0 {
		t.Errorf("Expected empty header map, got %v", headers)
	}
}
