// Package catalog holds the endpoint catalog: the declarative description
// of the REST API that APIBridge exposes as MCP tools. The catalog is
// loaded once at startup and is immutable afterwards.
package catalog

// Auth scheme values accepted in an endpoint's auth_type field.
const (
	AuthNone   = ""
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthAPIKey = "api_key"
)

// allowedMethods is the whitelist of HTTP methods for catalog endpoints.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// Param declares one tool parameter: its JSON type, a description, and
// whether callers must supply it. All fields are optional; type defaults
// to "string" and required defaults to false.
type Param struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// Endpoint describes one REST operation the bridge can invoke.
type Endpoint struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Method      string            `yaml:"method"`
	URL         string            `yaml:"url"`
	Headers     map[string]string `yaml:"headers"`
	Parameters  map[string]Param  `yaml:"parameters"`
	// PathParams lists parameter names substituted into {name} placeholders
	// in URL. A path argument missing at call time leaves the placeholder
	// text literally in the resolved URL; the upstream's error response
	// comes back through the normal error channel.
	PathParams   []string          `yaml:"path_params"`
	QueryParams  []string          `yaml:"query_params"`
	BodyTemplate string            `yaml:"body_template"`
	AuthType     string            `yaml:"auth_type"`
	AuthConfig   map[string]string `yaml:"auth_config"`
}

// Catalog is the top-level endpoint configuration for one bridge process.
type Catalog struct {
	Name          string            `yaml:"name"`
	Version       string            `yaml:"version"`
	BaseURL       string            `yaml:"base_url"`
	GlobalHeaders map[string]string `yaml:"global_headers"`
	Endpoints     []Endpoint        `yaml:"endpoints"`

	byName map[string]*Endpoint
}

// Endpoint returns the endpoint with the given name, or nil if no such
// endpoint exists. The lookup map is built once during Load.
func (c *Catalog) Endpoint(name string) *Endpoint {
	return c.byName[name]
}

// Index builds the name-keyed lookup map. Load calls this after
// validation, so duplicate names have already been rejected; callers
// constructing a Catalog programmatically must call it themselves.
func (c *Catalog) Index() {
	c.byName = make(map[string]*Endpoint, len(c.Endpoints))
	for i := range c.Endpoints {
		c.byName[c.Endpoints[i].Name] = &c.Endpoints[i]
	}
}
