package service

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Smallest payloads http.DetectContentType recognizes as images.
var (
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 8)...)
)

func TestStoreBase64Local(t *testing.T) {
	mediaDir := t.TempDir()
	svc := NewImageService(nil, mediaDir, zap.NewNop())
	ctx := context.Background()

	t.Run("raw base64 gif", func(t *testing.T) {
		url, err := svc.StoreBase64(ctx, base64.StdEncoding.EncodeToString(gifBytes))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "/media/recipes/"))
		assert.True(t, strings.HasSuffix(url, ".gif"))

		stored, err := os.ReadFile(filepath.Join(mediaDir, strings.TrimPrefix(url, "/media/")))
		require.NoError(t, err)
		assert.Equal(t, gifBytes, stored)
	})

	t.Run("data uri png", func(t *testing.T) {
		payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
		url, err := svc.StoreBase64(ctx, payload)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(url, ".png"))
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := svc.StoreBase64(ctx, "%%% not base64 %%%")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("unsupported content", func(t *testing.T) {
		_, err := svc.StoreBase64(ctx, base64.StdEncoding.EncodeToString([]byte("plain text, not an image")))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
