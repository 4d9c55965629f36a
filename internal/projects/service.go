package projects

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service handles project business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all projects.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

// Get fetches one project.
func (s *Service) Get(ctx context.Context, id int64) (Project, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a project. The slug derives from the title.
func (s *Service) Create(ctx context.Context, p Project) (Project, error) {
	if err := normalize(&p); err != nil {
		return Project{}, err
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = time.Now()
	}
	return s.repo.Create(ctx, p)
}

// Update validates and rewrites a project.
func (s *Service) Update(ctx context.Context, p Project) (Project, error) {
	if err := normalize(&p); err != nil {
		return Project{}, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Count returns the number of projects.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func normalize(p *Project) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Coordinator = strings.TrimSpace(p.Coordinator)
	p.Description = strings.TrimSpace(p.Description)
	if p.Title == "" {
		return errors.New("projects: title required")
	}
	switch p.Status {
	case StatusOngoing, StatusCompleted:
	case "":
		p.Status = StatusOngoing
	default:
		return errors.New("projects: unknown status")
	}
	p.Slug = slugify(p.Title)
	return nil
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
