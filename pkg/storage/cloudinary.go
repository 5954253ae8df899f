package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

// Asset is a stored media object. PublicID and ResourceType are what Delete needs.
type Asset struct {
	URL          string
	PublicID     string
	ResourceType string
}

// MediaStorage defines contract for media storage provider (Cloudinary implementation).
type MediaStorage interface {
	// Upload stores the reader under folder and returns the secure URL and public id.
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (*Asset, error)
	// Delete removes a stored asset by public id.
	Delete(ctx context.Context, publicID, resourceType string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates Cloudinary-backed implementation of MediaStorage.
// With an empty cloudinaryURL the SDK reads CLOUDINARY_URL from the environment.
func NewCloudinaryStorage(cloudinaryURL, cloudName string) (MediaStorage, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

// ResourceTypeFor picks the cloudinary resource type from the file extension.
func ResourceTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".gif", ".webp":
		return ResourceImage
	case ".mp4", ".mov", ".webm", ".m4v", ".avi":
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (*Asset, error) {
	if s == nil || s.cld == nil {
		return nil, fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	resourceType := ResourceTypeFor(fileName)

	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       fmt.Sprintf("%d-%s", time.Now().UnixNano(), base),
		Overwrite:      api.Bool(false),
		ResourceType:   resourceType,
	}

	// Apply WebP conversion and compression only for images
	if resourceType == ResourceImage {
		params.Format = "webp"
		params.Transformation = "q_auto"
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to cloudinary: %w", resourceType, err)
	}

	if resp.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return &Asset{
		URL:          resp.SecureURL,
		PublicID:     resp.PublicID,
		ResourceType: resourceType,
	}, nil
}

func (s *cloudinaryStorage) Delete(ctx context.Context, publicID, resourceType string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}
	if publicID == "" {
		return nil
	}
	if resourceType == "" {
		resourceType = ResourceImage
	}

	// Invalidate: true helps to clear CDN cache
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from cloudinary: %w", publicID, err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}
