package endpoints

import (
	"os"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// Resolver picks the Globus endpoint of this machine from the configured rules.
type Resolver struct {
	rules    domain.EndpointRules
	hostname func() (string, error)
}

type Option func(*Resolver)

// WithHostname is useful for tests.
func WithHostname(fn func() (string, error)) Option {
	return func(r *Resolver) { r.hostname = fn }
}

func NewResolver(rules domain.EndpointRules, opts ...Option) *Resolver {
	r := &Resolver{rules: rules, hostname: os.Hostname}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.EndpointResolver = (*Resolver)(nil)

func (r *Resolver) LocalEndpoint() (string, error) {
	host, err := r.hostname()
	if err != nil {
		return "", &domain.OpError{
			Op:   "endpoints.hostname",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}
	return r.rules.Resolve(host)
}
