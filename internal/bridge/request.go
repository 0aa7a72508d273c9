package bridge

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/bobmcallan/apibridge/internal/catalog"
)

// ResolvedRequest is a fully substituted HTTP request, built fresh for
// every invocation and never shared across calls.
type ResolvedRequest struct {
	Method string
	URL    string
	Header http.Header
	Query  url.Values
	Body   string
}

// BuildRequest resolves an endpoint plus call arguments into a concrete
// request. Resolution is deterministic: the same endpoint, catalog, and
// arguments always produce the same request.
func BuildRequest(cat *catalog.Catalog, ep *catalog.Endpoint, args map[string]any) ResolvedRequest {
	return ResolvedRequest{
		Method: ep.Method,
		URL:    resolveURL(cat, ep, args),
		Header: resolveHeaders(cat, ep),
		Query:  resolveQuery(ep, args),
		Body:   resolveBody(ep, args),
	}
}

// resolveURL joins the endpoint URL onto the catalog base URL when it is
// not already absolute, then substitutes {name} placeholders for every
// declared path param present in the arguments. A declared path param
// missing from the arguments leaves its placeholder literally in the URL;
// the request still goes out and the upstream's rejection surfaces through
// the normal error channel.
func resolveURL(cat *catalog.Catalog, ep *catalog.Endpoint, args map[string]any) string {
	rawURL := ep.URL

	if cat.BaseURL != "" && !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = joinURL(cat.BaseURL, rawURL)
	}

	for _, param := range ep.PathParams {
		if val, ok := args[param]; ok {
			rawURL = strings.ReplaceAll(rawURL, "{"+param+"}", argString(val))
		}
	}

	return rawURL
}

// joinURL resolves ref against base per RFC 3986. Base URLs are validated
// at catalog load, so the fallback concatenation only covers refs that do
// not parse as URL references.
func joinURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
	}
	r, err := url.Parse(ref)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
	}
	return b.ResolveReference(r).String()
}

// resolveQuery collects declared query params present in the arguments.
// Absent arguments are omitted entirely rather than sent empty.
func resolveQuery(ep *catalog.Endpoint, args map[string]any) url.Values {
	query := make(url.Values)
	for _, param := range ep.QueryParams {
		if val, ok := args[param]; ok {
			query.Set(param, argString(val))
		}
	}
	return query
}

// resolveBody substitutes {key} placeholders in the body template for
// every argument key, declared or not. No template means no body.
func resolveBody(ep *catalog.Endpoint, args map[string]any) string {
	if ep.BodyTemplate == "" {
		return ""
	}
	body := ep.BodyTemplate
	for key, val := range args {
		body = strings.ReplaceAll(body, "{"+key+"}", argString(val))
	}
	return body
}

// resolveHeaders merges global headers, endpoint headers, and auth headers
// in that order; later sources overwrite earlier ones on name collision.
func resolveHeaders(cat *catalog.Catalog, ep *catalog.Endpoint) http.Header {
	headers := make(http.Header)
	for k, v := range cat.GlobalHeaders {
		headers.Set(k, v)
	}
	for k, v := range ep.Headers {
		headers.Set(k, v)
	}
	for k, vals := range AuthHeaders(ep, os.Getenv) {
		for _, v := range vals {
			headers.Set(k, v)
		}
	}
	return headers
}

// argString renders a call argument as text for URL, query, and body
// substitution. JSON numbers arrive as float64; whole values render
// without a decimal point so {id} substitutes as "42", not "42.000000".
func argString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
