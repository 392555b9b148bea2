// Package audit records one entry per request made by an authenticated
// actor. Entries are built after the wrapped handler returns and handed to
// a bounded queue that a single Writer drains into storage, so audit
// failures never reach the response.
package audit

import (
	"net"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

// Resource types derived from the request path.
const (
	ResourceGraphQL = "GraphQL"
	ResourceMetrics = "Metrics"
	ResourceUnknown = "Unknown"
)

// ResourceIDUnresolved is stored until requests can be tied to a record.
const ResourceIDUnresolved = "N/A"

// Body markers. Request bodies are never stored.
const (
	BodyRedacted     = "REDACTED"
	BodyParsingError = "ERROR_PARSING_BODY"
)

func ActionFor(method string) models.AuditAction {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead:
		return models.ActionRead
	case http.MethodPost:
		return models.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.ActionUpdate
	case http.MethodDelete:
		return models.ActionDelete
	default:
		return models.ActionUnknown
	}
}

func ResourceTypeFor(path string) string {
	switch {
	case strings.Contains(path, "/graphql"):
		return ResourceGraphQL
	case strings.Contains(path, "/metrics"):
		return ResourceMetrics
	default:
		return ResourceUnknown
	}
}

// Successful reports whether status is in [200, 400).
func Successful(status int) bool {
	return status >= 200 && status < 400
}

// mutating methods get a body marker in the details blob.
func mutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
