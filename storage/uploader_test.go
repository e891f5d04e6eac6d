package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestSniffImage_PNG(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2000)...)

	contentType, ext, full, err := SniffImage(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	got, err := io.ReadAll(full)
	require.NoError(t, err)
	assert.Equal(t, payload, got, "sniffing must not consume the upload")
}

func TestSniffImage_RejectsText(t *testing.T) {
	_, _, _, err := SniffImage(strings.NewReader("just some text"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLogoKey(t *testing.T) {
	key := LogoKey("clubs", 12, ".png")
	assert.True(t, strings.HasPrefix(key, "clubs/12/logo_"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, LogoKey("clubs", 12, ".png"))
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.com/assets/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/assets/clubs/1/logo.png", PublicURL(base, "clubs/1/logo.png"))
	assert.Equal(t, "https://cdn.example.com/assets/clubs/1/logo.png", PublicURL(base, "/clubs/1/logo.png"))
	assert.Equal(t, "", PublicURL(base, ""))
	assert.Equal(t, "", PublicURL(nil, "x"))
}

func TestCloudflareR2Config(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{BucketName: "logos"})
	require.Error(t, err)
}
