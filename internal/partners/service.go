package partners

import (
	"context"
	"errors"
	"strings"
)

// Service handles partner business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all partners.
func (s *Service) List(ctx context.Context) ([]Partner, error) {
	return s.repo.List(ctx)
}

// Get fetches one partner.
func (s *Service) Get(ctx context.Context, id int64) (Partner, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a partner.
func (s *Service) Create(ctx context.Context, p Partner) (Partner, error) {
	if err := normalize(&p); err != nil {
		return Partner{}, err
	}
	return s.repo.Create(ctx, p)
}

// Update validates and rewrites a partner.
func (s *Service) Update(ctx context.Context, p Partner) (Partner, error) {
	if err := normalize(&p); err != nil {
		return Partner{}, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a partner.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Count returns the number of partners.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func normalize(p *Partner) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Website = strings.TrimSpace(p.Website)
	p.ContactEmail = strings.ToLower(strings.TrimSpace(p.ContactEmail))
	p.Blurb = strings.TrimSpace(p.Blurb)
	if p.Name == "" {
		return errors.New("partners: name required")
	}
	return nil
}
