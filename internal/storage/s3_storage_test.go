package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/ikkim/toolchest-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(context.Background(), config.S3Config{
		Region:          "ap-northeast-2",
		Bucket:          "toolchest-assets",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		BaseURL:         baseURL,
	})
}

func TestS3Storage_PresignIconUpload(t *testing.T) {
	s := newTestStorage("https://cdn.toolchest.dev/")

	resp, err := s.PresignIconUpload(context.Background(), "base64", "Icon.PNG", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "tool-icons/base64/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Equal(t, "https://cdn.toolchest.dev/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "toolchest-assets")
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature=")
}

func TestS3Storage_RejectsContentType(t *testing.T) {
	s := newTestStorage("")

	_, err := s.PresignIconUpload(context.Background(), "base64", "icon.exe", "application/octet-stream")
	assert.Error(t, err)
}

func TestS3Storage_DirectFileURL(t *testing.T) {
	s := newTestStorage("")
	assert.Equal(t, "https://toolchest-assets.s3.ap-northeast-2.amazonaws.com/tool-icons/a.png", s.FileURL("tool-icons/a.png"))
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(1024, MaxIconSize))
	assert.Error(t, ValidateFileSize(0, MaxIconSize))
	assert.Error(t, ValidateFileSize(MaxIconSize+1, MaxIconSize))
}
