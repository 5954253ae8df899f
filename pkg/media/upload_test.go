package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"testing"

	"anoa.com/survivehub/pkg/apperror"
	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/storage"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	folder string
	name   string
	data   []byte
}

func (s *recordingStore) Upload(_ context.Context, r io.Reader, folder, fileName string) (*storage.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.folder, s.name, s.data = folder, fileName, data
	return &storage.Asset{URL: "https://cdn.test/" + folder + "/" + fileName, PublicID: folder + "/" + fileName, ResourceType: storage.ResourceImage}, nil
}

func (s *recordingStore) Delete(context.Context, string, string) error { return nil }

func pngFile(t *testing.T, w, h int) *dto.FileUpload {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return &dto.FileUpload{Reader: &buf, FileName: "summit.png", ContentType: "image/png"}
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("resizes to the requested size", func(t *testing.T) {
		store := &recordingStore{}
		asset, err := UploadImage(ctx, store, pngFile(t, 1200, 300), "avatars", Avatar)
		require.NoError(t, err)
		assert.Equal(t, "avatars/summit.jpg", asset.PublicID)
		assert.Equal(t, "summit.jpg", store.name)

		img, _, err := image.Decode(bytes.NewReader(store.data))
		require.NoError(t, err)
		assert.Equal(t, Avatar.Width, img.Bounds().Dx())
		assert.Equal(t, Avatar.Height, img.Bounds().Dy())
	})

	t.Run("rejects non images", func(t *testing.T) {
		file := &dto.FileUpload{Reader: bytes.NewReader([]byte("x")), FileName: "a.txt", ContentType: "text/plain"}
		_, err := UploadImage(ctx, &recordingStore{}, file, "posts", Cover)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("requires storage", func(t *testing.T) {
		_, err := UploadImage(ctx, nil, pngFile(t, 10, 10), "posts", Cover)
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})
}
