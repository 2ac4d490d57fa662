package catalog

import (
	"context"
	"strings"

	"github.com/suipic/client-go/internal/infra/api"
)

// Photographers returns the admin's photographer list.
func (s *Service) Photographers(ctx context.Context) ([]api.User, error) {
	return fetchAs(ctx, s.cache, PhotographersKey(), s.backend.ListPhotographers)
}

// CreatePhotographer provisions a photographer account. Identity and the
// initial password are server-assigned, so there is no optimistic phase; on
// success the photographer list is refetched.
func (s *Service) CreatePhotographer(ctx context.Context, req api.CreatePhotographerRequest) (api.CreatePhotographerResponse, error) {
	if err := req.Validate(); err != nil {
		return api.CreatePhotographerResponse{}, err
	}

	resp, err := s.backend.CreatePhotographer(ctx, req)
	if err != nil {
		return api.CreatePhotographerResponse{}, err
	}

	s.cache.Invalidate(PhotographersKey())
	return resp, nil
}

// Clients returns the photographer's client list.
func (s *Service) Clients(ctx context.Context) ([]api.ClientAccount, error) {
	return fetchAs(ctx, s.cache, ClientsKey(), s.backend.ListClients)
}

// SearchClients finds clients by name fragment. An empty query returns
// nothing without hitting the network.
func (s *Service) SearchClients(ctx context.Context, query string) ([]api.ClientAccount, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return fetchAs(ctx, s.cache, ClientSearchKey(query), func(ctx context.Context) ([]api.ClientAccount, error) {
		return s.backend.SearchClients(ctx, query)
	})
}

// CreateOrLinkClient creates a client account or links an existing one to
// the photographer. On success every cached client view, including search
// result sets, is marked stale.
func (s *Service) CreateOrLinkClient(ctx context.Context, req api.CreateClientRequest) (api.ClientAccount, error) {
	if err := req.Validate(); err != nil {
		return api.ClientAccount{}, err
	}

	client, err := s.backend.CreateOrLinkClient(ctx, req)
	if err != nil {
		return api.ClientAccount{}, err
	}

	s.cache.InvalidateKind(KindClients)
	return client, nil
}
