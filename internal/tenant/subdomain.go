// Package tenant resolves which organization a request belongs to. The session
// identity is tried first, an explicit organization parameter overrides it, and
// custom-domain or subdomain lookups fill in for anonymous traffic.
package tenant

import (
	"net"
	"strings"
)

// DefaultReservedSubdomains never resolve to an organization.
var DefaultReservedSubdomains = []string{"www", "admin"}

// NormalizeHost lowercases host and strips the port and any trailing dot.
// Bracketed IPv6 literals are returned without brackets.
func NormalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if strings.HasPrefix(h, "[") {
		if end := strings.IndexByte(h, ']'); end > 0 {
			return h[1:end]
		}
		return ""
	}
	if strings.Count(h, ":") == 1 {
		h = h[:strings.IndexByte(h, ':')]
	}
	return strings.TrimSuffix(h, ".")
}

// ExtractSubdomain returns the tenant label of host, or "" when host carries none.
//
// Both localhost-style hosts (acme.portal.localhost) and public hosts
// (acme.example.com) need at least three labels, so "acme.localhost" and
// "example.com" yield nothing. IP literals never yield a label. reserved
// overrides DefaultReservedSubdomains when given. The label is returned as
// written; lookups decide whether it names an organization.
func ExtractSubdomain(host string, reserved ...string) string {
	h := NormalizeHost(host)
	if h == "" || net.ParseIP(h) != nil {
		return ""
	}

	labels := strings.Split(h, ".")
	if len(labels) < 3 {
		return ""
	}

	label := labels[0]

	if len(reserved) == 0 {
		reserved = DefaultReservedSubdomains
	}
	for _, r := range reserved {
		if strings.EqualFold(label, r) {
			return ""
		}
	}
	return label
}
