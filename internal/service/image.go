package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platefeed/backend/config"
)

// ImageService decodes inline base64 image payloads from recipe writes and
// stores them, either in S3 or on the local media directory when no bucket
// is configured.
type ImageService struct {
	s3       *config.S3Config
	mediaDir string
	logger   *zap.Logger
}

func NewImageService(s3cfg *config.S3Config, mediaDir string, logger *zap.Logger) *ImageService {
	return &ImageService{
		s3:       s3cfg,
		mediaDir: mediaDir,
		logger:   logger,
	}
}

// StoreBase64 accepts either a raw base64 string or a data URI
// ("data:image/png;base64,...."), decodes it, derives the file extension
// from the decoded bytes and stores the file under a generated name.
// Returns the public URL of the stored image.
func (s *ImageService) StoreBase64(ctx context.Context, payload string) (string, error) {
	data := payload
	if strings.Contains(data, ";base64,") {
		_, data, _ = strings.Cut(data, ";base64,")
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", invalidf("image is not valid base64 data")
	}

	ext, contentType, err := imageExtension(decoded)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("recipes/%s.%s", uuid.New().String()[:12], ext)

	if s.s3 != nil {
		return s.uploadToS3(ctx, decoded, name, contentType)
	}
	return s.writeLocal(decoded, name)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, name, contentType string) (string, error) {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3.BucketName, name)
	s.logger.Info("uploaded recipe image", zap.String("url", url))
	return url, nil
}

func (s *ImageService) writeLocal(data []byte, name string) (string, error) {
	path := filepath.Join(s.mediaDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "/media/" + name, nil
}

func imageExtension(data []byte) (ext, contentType string, err error) {
	contentType = http.DetectContentType(data)
	switch contentType {
	case "image/jpeg":
		return "jpg", contentType, nil
	case "image/png":
		return "png", contentType, nil
	case "image/gif":
		return "gif", contentType, nil
	case "image/webp":
		return "webp", contentType, nil
	default:
		return "", "", invalidf("unsupported image type %s", contentType)
	}
}
