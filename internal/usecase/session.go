package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// Session authenticates against DataFed once per process and makes sure a
// default Globus endpoint is configured.
type Session struct {
	client    ports.Client
	endpoints ports.EndpointResolver
	log       *slog.Logger

	mu    sync.Mutex
	ready bool
	uid   string

	// epMu is separate so SetEndpoint can run while Init holds mu.
	epMu     sync.Mutex
	endpoint string
}

func NewSession(client ports.Client, endpoints ports.EndpointResolver, log *slog.Logger) *Session {
	return &Session{
		client:    client,
		endpoints: endpoints,
		log:       orDiscard(log),
	}
}

// Init is safe to call repeatedly; only the first successful call talks to DataFed.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	reply, err := s.client.Run(ctx, "user", "who")
	if err != nil {
		return err
	}
	if reply.UID == "" {
		return &domain.OpError{
			Op:   "session.init",
			Kind: domain.KindAuth,
			Err:  fmt.Errorf("%w; go to a terminal and run \"datafed setup\"", domain.ErrNotAuthorized),
		}
	}
	s.uid = reply.UID
	s.log.Info("session.authenticated", "uid", reply.UID)

	ep, err := s.client.Run(ctx, "ep", "get")
	switch {
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case err != nil || ep.Endpoint == "":
		s.log.Debug("session.no_default_endpoint", "err", err)
		if _, err := s.SetEndpoint(ctx); err != nil {
			return err
		}
	default:
		s.setCurrent(ep.Endpoint)
		s.log.Debug("session.endpoint", "endpoint", ep.Endpoint)
	}

	s.ready = true
	return nil
}

// UID is the authenticated user id, empty before Init succeeds.
func (s *Session) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// Endpoint is the default Globus endpoint last seen or set.
func (s *Session) Endpoint() string {
	s.epMu.Lock()
	defer s.epMu.Unlock()
	return s.endpoint
}

func (s *Session) setCurrent(ep string) {
	s.epMu.Lock()
	s.endpoint = ep
	s.epMu.Unlock()
}

// SetEndpoint makes the endpoint of this machine the default one for transfers.
func (s *Session) SetEndpoint(ctx context.Context) (string, error) {
	ep, err := s.endpoints.LocalEndpoint()
	if err != nil {
		return "", err
	}

	if _, err := s.client.Run(ctx, "ep", "default", "set", ep); err != nil {
		return "", err
	}

	s.setCurrent(ep)
	s.log.Info("session.endpoint_set", "endpoint", ep)
	return ep, nil
}
