package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"anoa.com/survivehub/internal/entity"
	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/storage"
	"go.uber.org/zap"
)

var (
	ErrResourceNotFound = fmt.Errorf("resource not found: %w", apperror.ErrNotFound)
	ErrResourceExists   = fmt.Errorf("a resource with that name already exists: %w", apperror.ErrConflict)
	ErrDownloadsOff     = apperror.New(http.StatusServiceUnavailable, "downloads are not available", nil)
)

// DownloadService manages the shared files members can download.
type DownloadService interface {
	ListResources(ctx context.Context) ([]storage.FileObject, error)
	UploadResource(ctx context.Context, p entity.Principal, file *dto.FileUpload) (*storage.FileObject, error)
	DeleteResource(ctx context.Context, p entity.Principal, name string) error
}

type downloadService struct {
	store storage.FileStore
	log   *zap.SugaredLogger
}

// NewDownloadService accepts a nil store when S3 is not configured.
func NewDownloadService(store storage.FileStore, log *zap.SugaredLogger) DownloadService {
	return &downloadService{store: store, log: log}
}

func cleanName(name string) (string, error) {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("invalid file name: %w", apperror.ErrInvalidInput)
	}
	return name, nil
}

func (s *downloadService) ListResources(ctx context.Context) ([]storage.FileObject, error) {
	if s.store == nil {
		return nil, ErrDownloadsOff
	}
	files, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []storage.FileObject{}
	}
	return files, nil
}

func (s *downloadService) UploadResource(ctx context.Context, p entity.Principal, file *dto.FileUpload) (*storage.FileObject, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("only admins upload resources: %w", apperror.ErrForbidden)
	}
	if s.store == nil {
		return nil, ErrDownloadsOff
	}
	if file == nil {
		return nil, fmt.Errorf("file is required: %w", apperror.ErrInvalidInput)
	}

	name, err := cleanName(file.FileName)
	if err != nil {
		return nil, err
	}

	_, err = s.store.Stat(ctx, name)
	switch {
	case err == nil:
		return nil, ErrResourceExists
	case !errors.Is(err, storage.ErrObjectNotFound):
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	obj, err := s.store.Put(ctx, name, contentType, file.Reader)
	if err != nil {
		return nil, err
	}
	obj.Size = file.Size

	s.log.Infow("resource uploaded", "name", name, "size", file.Size, "by", p.UserID)
	return obj, nil
}

func (s *downloadService) DeleteResource(ctx context.Context, p entity.Principal, name string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("only admins delete resources: %w", apperror.ErrForbidden)
	}
	if s.store == nil {
		return ErrDownloadsOff
	}

	name, err := cleanName(name)
	if err != nil {
		return err
	}

	if _, err := s.store.Stat(ctx, name); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return ErrResourceNotFound
		}
		return err
	}
	if err := s.store.Remove(ctx, name); err != nil {
		return err
	}

	s.log.Infow("resource deleted", "name", name, "by", p.UserID)
	return nil
}
