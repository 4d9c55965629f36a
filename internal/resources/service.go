package resources

import (
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/bless15/nacos-admin/internal/shared"
)

// Service handles resource business logic, including upload storage.
type Service struct {
	repo   RepositoryPort
	policy shared.UploadPolicy
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, policy shared.UploadPolicy) *Service {
	return &Service{repo: repo, policy: policy}
}

// List returns all resources.
func (s *Service) List(ctx context.Context) ([]Resource, error) {
	return s.repo.List(ctx)
}

// Get fetches one resource.
func (s *Service) Get(ctx context.Context, id int64) (Resource, error) {
	return s.repo.Get(ctx, id)
}

// Create stores the upload and records the resource. The stored file is
// removed again if the insert fails.
func (s *Service) Create(ctx context.Context, res Resource, upload *multipart.FileHeader) (Resource, error) {
	res.Title = strings.TrimSpace(res.Title)
	if res.Title == "" {
		return Resource{}, errors.New("resources: title required")
	}
	storedName, err := s.policy.Store(upload)
	if err != nil {
		return Resource{}, err
	}
	res.StoredName = storedName
	res.OriginalName = upload.Filename
	res.SizeBytes = upload.Size
	created, err := s.repo.Create(ctx, res)
	if err != nil {
		_ = os.Remove(filepath.Join(s.policy.BaseDir, storedName))
		return Resource{}, err
	}
	return created, nil
}

// Delete removes the record and unlinks the stored file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(s.policy.BaseDir, res.StoredName))
	return nil
}

// FilePath returns the on-disk path for a stored resource.
func (s *Service) FilePath(res Resource) string {
	return filepath.Join(s.policy.BaseDir, res.StoredName)
}

// Count returns the number of resources.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
