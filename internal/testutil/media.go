package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"anoa.com/survivehub/pkg/dto"
	"anoa.com/survivehub/pkg/storage"
	"github.com/stretchr/testify/require"
)

// MediaStore is an in-memory storage.MediaStorage that records uploads and deletions.
type MediaStore struct {
	mu      sync.Mutex
	seq     int
	Uploads map[string][]byte
	Deleted []string
}

func NewMediaStore() *MediaStore {
	return &MediaStore{Uploads: map[string][]byte{}}
}

func (m *MediaStore) Upload(_ context.Context, r io.Reader, folder, fileName string) (*storage.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("%s/%d-%s", folder, m.seq, fileName)
	m.Uploads[id] = data
	return &storage.Asset{
		URL:          "https://media.test/" + id,
		PublicID:     id,
		ResourceType: storage.ResourceImage,
	}, nil
}

func (m *MediaStore) Delete(_ context.Context, publicID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Uploads, publicID)
	m.Deleted = append(m.Deleted, publicID)
	return nil
}

// PNG returns a small solid-colour PNG upload.
func PNG(t *testing.T, name string) *dto.FileUpload {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for x := 0; x < 32; x++ {
		for y := 0; y < 24; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &dto.FileUpload{
		Reader:      &buf,
		FileName:    name,
		ContentType: "image/png",
		Size:        int64(buf.Len()),
	}
}
