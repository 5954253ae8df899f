package media

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/storage"
)

var ErrStorageDisabled = errors.New("media storage is not configured")

// UploadImage resizes file to size and stores it under folder.
func UploadImage(ctx context.Context, store storage.MediaStorage, file *dto.FileUpload, folder string, size Size) (*storage.Asset, error) {
	if store == nil {
		return nil, ErrStorageDisabled
	}
	if file.ContentType != "" && !IsImage(file.ContentType) {
		return nil, fmt.Errorf("%s is not an image: %w", file.FileName, apperror.ErrInvalidInput)
	}

	resized, name, err := Fill(file.Reader, file.FileName, size)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrInvalidInput)
	}

	asset, err := store.Upload(ctx, resized, folder, name)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	return asset, nil
}

// UploadVideo stores file under folder without transcoding.
func UploadVideo(ctx context.Context, store storage.MediaStorage, file *dto.FileUpload, folder string) (*storage.Asset, error) {
	if store == nil {
		return nil, ErrStorageDisabled
	}
	if file.ContentType != "" && !IsVideo(file.ContentType) {
		return nil, fmt.Errorf("%s is not a video: %w", file.FileName, apperror.ErrInvalidInput)
	}

	asset, err := store.Upload(ctx, file.Reader, folder, file.FileName)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", file.FileName, err)
	}
	return asset, nil
}
