package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// MapConfig applies the parsed file on top of base. Only keys present in the
// file override base values.
func MapConfig(path string, base domain.Config, y YAMLConfig) (domain.Config, error) {
	cfg := base

	if b := strings.TrimSpace(y.Client.Binary); b != "" {
		cfg.Client.Binary = b
	}
	if y.Client.Args != nil {
		cfg.Client.Args = append([]string(nil), y.Client.Args...)
	}
	if t := strings.TrimSpace(y.Client.Timeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return base, invalidField(path, "client.timeout", err.Error())
		}
		if d <= 0 {
			return base, invalidField(path, "client.timeout", "must be positive")
		}
		cfg.Client.Timeout = d
	}
	if y.Client.RateLimit != nil {
		if *y.Client.RateLimit < 0 {
			return base, invalidField(path, "client.rate_limit", "must not be negative")
		}
		cfg.Client.RateLimit = *y.Client.RateLimit
	}
	if y.Client.Burst != nil {
		if *y.Client.Burst < 1 {
			return base, invalidField(path, "client.burst", "must be at least 1")
		}
		cfg.Client.Burst = *y.Client.Burst
	}

	if y.Defaults.Collection != "" {
		cfg.Defaults.Collection = strings.TrimSpace(y.Defaults.Collection)
	}
	if y.Defaults.Repository != "" {
		cfg.Defaults.Repository = strings.TrimSpace(y.Defaults.Repository)
	}
	if y.Defaults.Project != "" {
		cfg.Defaults.Project = strings.TrimSpace(y.Defaults.Project)
	}
	if y.Defaults.Keywords != nil {
		kw, err := domain.ValidateStrings(y.Defaults.Keywords, "keyword")
		if err != nil {
			return base, invalidField(path, "defaults.keywords", err.Error())
		}
		cfg.Defaults.Keywords = kw
	}
	if y.Defaults.Wait != nil {
		cfg.Defaults.Wait = *y.Defaults.Wait
	}

	if y.Push.Extensions != nil {
		exts := make([]string, 0, len(y.Push.Extensions))
		for i, e := range y.Push.Extensions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				return base, invalidField(path, fmt.Sprintf("push.extensions[%d]", i), "extension is empty")
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		cfg.Push.Extensions = exts
	}
	if y.Push.Parallel != nil {
		cfg.Push.Parallel = *y.Push.Parallel
	}
	if y.Push.Workers != nil {
		if *y.Push.Workers < 0 {
			return base, invalidField(path, "push.workers", "must not be negative")
		}
		cfg.Push.Workers = *y.Push.Workers
	}
	if y.Push.RequireMetadata != nil {
		cfg.Push.RequireMetadata = *y.Push.RequireMetadata
	}

	eps, err := mapEndpoints(path, base.Endpoints, y.Endpoints)
	if err != nil {
		return base, err
	}
	cfg.Endpoints = eps

	if y.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Paths.RunsDir
	}
	if y.Paths.Ledger != "" {
		cfg.Paths.Ledger = y.Paths.Ledger
	}
	if y.Masking.Enabled != nil {
		cfg.Masking.Enabled = *y.Masking.Enabled
	}

	return cfg, nil
}

// mapEndpoints merges configured hosts into the defaults. Configured rules
// are evaluated before the built-in ones.
func mapEndpoints(path string, base domain.EndpointRules, y YAMLEndpoints) (domain.EndpointRules, error) {
	out := domain.EndpointRules{
		Default: base.Default,
		Hosts:   map[string]string{},
	}
	for h, ep := range base.Hosts {
		out.Hosts[h] = ep
	}
	if d := strings.TrimSpace(y.Default); d != "" {
		out.Default = d
	}
	for h, ep := range y.Hosts {
		h, ep = strings.TrimSpace(h), strings.TrimSpace(ep)
		if h == "" || ep == "" {
			return base, invalidField(path, "endpoints.hosts", fmt.Sprintf("host %q needs a non-empty endpoint", h))
		}
		out.Hosts[h] = ep
	}

	for i, r := range y.Rules {
		field := fmt.Sprintf("endpoints.rules[%d]", i)
		if strings.TrimSpace(r.Endpoint) == "" {
			return base, invalidField(path, field+".endpoint", "endpoint is required")
		}
		if len(r.Prefixes) == 0 && strings.TrimSpace(r.Suffix) == "" {
			return base, invalidField(path, field, "a rule needs prefixes or a suffix")
		}
		out.Rules = append(out.Rules, domain.EndpointRule{
			Prefixes: r.Prefixes,
			Suffix:   strings.TrimSpace(r.Suffix),
			Endpoint: strings.TrimSpace(r.Endpoint),
		})
	}
	out.Rules = append(out.Rules, base.Rules...)

	return out, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
