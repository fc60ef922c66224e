// Package egress enforces that provider traffic only leaves over HTTPS to a
// fixed set of hosts.
package egress

import (
	"net"
	"net/http"
	"strings"

	"gridwright/engine/internal/llm"
)

// AllowlistRoundTripper rejects any request that is not HTTPS to a named
// allowlisted host. Raw IPs are always blocked.
type AllowlistRoundTripper struct {
	Base      http.RoundTripper
	Allowlist map[string]bool
}

func NewAllowlistRoundTripper(base http.RoundTripper, hosts []string) *AllowlistRoundTripper {
	allowlist := make(map[string]bool, len(hosts))
	for _, host := range hosts {
		allowlist[strings.ToLower(host)] = true
	}
	return &AllowlistRoundTripper{Base: base, Allowlist: allowlist}
}

func (rt *AllowlistRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL == nil {
		return nil, llm.ErrEgressBlocked
	}
	if req.URL.Scheme != "https" {
		return nil, llm.ErrEgressBlocked
	}
	host := req.URL.Hostname()
	if host == "" {
		return nil, llm.ErrEgressBlocked
	}
	if ip := net.ParseIP(host); ip != nil {
		return nil, llm.ErrEgressBlocked
	}
	if !rt.Allowlist[strings.ToLower(host)] {
		return nil, llm.ErrEgressBlocked
	}
	base := rt.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
