package catalog

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} references in the raw catalog text.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads an endpoint catalog from the given path and returns the
// parsed, validated Catalog. Environment variables in the format
// ${VAR_NAME} are expanded before parsing, so secrets can be kept out of
// the file itself. JSON catalogs parse as well since JSON is a subset of
// YAML. Any validation failure is fatal: a catalog that loads is a catalog
// the bridge can serve.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cat Catalog
	if err := yaml.Unmarshal([]byte(expanded), &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	cat.applyDefaults()

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}

	cat.Index()
	return &cat, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in the defaulted fields: GET for a missing method
// (uppercasing whatever was given), "string" for a missing parameter type.
func (c *Catalog) applyDefaults() {
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		if ep.Method == "" {
			ep.Method = "GET"
		} else {
			ep.Method = strings.ToUpper(ep.Method)
		}
		ep.AuthType = strings.ToLower(ep.AuthType)
		if ep.AuthType == "none" {
			ep.AuthType = AuthNone
		}
		for name, p := range ep.Parameters {
			if p.Type == "" {
				p.Type = "string"
				ep.Parameters[name] = p
			}
		}
	}
}

// Validate checks the catalog for the conditions that make it unservable.
// Returns an error describing the first failure encountered.
func (c *Catalog) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("catalog has no endpoints")
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url %q is not a valid URL: %w", c.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url %q must use http or https", c.BaseURL)
		}
	}

	seen := make(map[string]bool, len(c.Endpoints))
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		if err := validateEndpoint(ep); err != nil {
			return err
		}
		if seen[ep.Name] {
			return fmt.Errorf("duplicate endpoint name %q", ep.Name)
		}
		seen[ep.Name] = true
	}

	return nil
}

// validateEndpoint validates a single endpoint definition.
func validateEndpoint(ep *Endpoint) error {
	if ep.Name == "" {
		return fmt.Errorf("endpoint has empty name")
	}
	if ep.Description == "" {
		return fmt.Errorf("endpoint %q has empty description", ep.Name)
	}
	if ep.URL == "" {
		return fmt.Errorf("endpoint %q has empty url", ep.Name)
	}
	if !allowedMethods[ep.Method] {
		return fmt.Errorf("endpoint %q has unsupported method %q", ep.Name, ep.Method)
	}

	switch ep.AuthType {
	case AuthNone, AuthBearer, AuthBasic, AuthAPIKey:
	default:
		return fmt.Errorf("endpoint %q has unknown auth_type %q (want bearer, basic, or api_key)", ep.Name, ep.AuthType)
	}

	for _, p := range ep.PathParams {
		if !strings.Contains(ep.URL, "{"+p+"}") {
			return fmt.Errorf("endpoint %q declares path param %q but url %q has no {%s} placeholder", ep.Name, p, ep.URL, p)
		}
	}

	return nil
}
