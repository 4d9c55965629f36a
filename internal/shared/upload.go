package shared

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload validation failures.
var (
	ErrUploadTooLarge  = errors.New("uploaded file exceeds size limit")
	ErrUploadExtension = errors.New("uploaded file type not allowed")
)

// UploadPolicy validates and stores multipart file uploads under a base
// directory with collision-free names.
type UploadPolicy struct {
	BaseDir    string
	MaxBytes   int64
	Extensions []string
}

// NewUploadPolicy builds a policy. Extensions are matched case-insensitively
// and must include the leading dot.
func NewUploadPolicy(baseDir string, maxBytes int64, extensions ...string) UploadPolicy {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return UploadPolicy{BaseDir: baseDir, MaxBytes: maxBytes, Extensions: normalized}
}

// Validate checks the header against the policy without touching the disk.
func (p UploadPolicy) Validate(header *multipart.FileHeader) error {
	if header == nil {
		return errors.New("upload missing")
	}
	if p.MaxBytes > 0 && header.Size > p.MaxBytes {
		return ErrUploadTooLarge
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range p.Extensions {
		if ext == allowed {
			return nil
		}
	}
	return ErrUploadExtension
}

// Store validates then writes the upload to BaseDir under a unique name,
// returning the stored file name.
func (p UploadPolicy) Store(header *multipart.FileHeader) (string, error) {
	if err := p.Validate(header); err != nil {
		return "", err
	}
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("shared: open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	if err := os.MkdirAll(p.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("shared: upload dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(p.BaseDir, name))
	if err != nil {
		return "", fmt.Errorf("shared: create upload: %w", err)
	}
	defer dst.Close()

	limit := p.MaxBytes
	if limit <= 0 {
		limit = header.Size
	}
	// Size cap enforced again at copy time; the header size is client supplied.
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("shared: write upload: %w", err)
	}
	if p.MaxBytes > 0 && n > p.MaxBytes {
		_ = os.Remove(dst.Name())
		return "", ErrUploadTooLarge
	}
	return name, nil
}
