package domain

import (
	"fmt"
	"strings"
)

// EndpointRule maps a family of hostnames to one Globus endpoint.
// A hostname matches when it starts with any prefix and ends with Suffix.
type EndpointRule struct {
	Prefixes []string
	Suffix   string
	Endpoint string
}

func (r EndpointRule) Matches(hostname string) bool {
	if !strings.HasSuffix(hostname, r.Suffix) {
		return false
	}
	if len(r.Prefixes) == 0 {
		return r.Suffix != ""
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(hostname, p) {
			return true
		}
	}
	return false
}

// EndpointRules resolves the Globus endpoint of the machine dfkit runs on.
type EndpointRules struct {
	Default string
	Hosts   map[string]string
	Rules   []EndpointRule
}

// Resolve checks exact hostnames first, then rules in order, then Default.
func (e EndpointRules) Resolve(hostname string) (string, error) {
	host := strings.TrimSpace(hostname)
	if ep := strings.TrimSpace(e.Hosts[host]); ep != "" {
		return ep, nil
	}
	for _, r := range e.Rules {
		if r.Endpoint != "" && r.Matches(host) {
			return r.Endpoint, nil
		}
	}
	if ep := strings.TrimSpace(e.Default); ep != "" {
		return ep, nil
	}
	return "", &OpError{
		Op:   "endpoints.resolve",
		Kind: KindNotFound,
		Err:  fmt.Errorf("globus endpoint for hostname %q is not known; add it under endpoints.hosts in dfkit.yaml: %w", host, ErrNotFound),
	}
}
