package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/config"
	"go.uber.org/zap"
)

// MaxImageSize is the largest recipe picture accepted.
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectUploader is the part of the S3 client used for pictures.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores recipe pictures in S3
type ImageService struct {
	uploader  ObjectUploader
	bucket    string
	publicURL func(key string) string
	log       *zap.Logger
}

// NewImageService returns a disabled service when s3Config is nil.
func NewImageService(s3Config *config.S3Config, log *zap.Logger) *ImageService {
	svc := &ImageService{log: log.Named("images")}
	if s3Config != nil {
		svc.uploader = s3Config.Client
		svc.bucket = s3Config.BucketName
		svc.publicURL = s3Config.PublicURL
	}
	return svc
}

// NewImageServiceWithUploader wires an arbitrary uploader, mostly for tests.
func NewImageServiceWithUploader(uploader ObjectUploader, bucket string, publicURL func(string) string, log *zap.Logger) *ImageService {
	return &ImageService{
		uploader:  uploader,
		bucket:    bucket,
		publicURL: publicURL,
		log:       log.Named("images"),
	}
}

func (s *ImageService) Enabled() bool {
	return s.uploader != nil
}

// UploadRecipeImage stores data under recipe_pictures/ and returns its public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, data []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrStorageDisabled
	}
	if len(data) == 0 {
		return "", &ValidationError{Errors: []string{"image is empty"}}
	}
	if len(data) > MaxImageSize {
		return "", &ValidationError{Errors: []string{"image must be at most 5 MiB"}}
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", &ValidationError{Errors: []string{fmt.Sprintf("unsupported image type %s", contentType)}}
	}

	key := "recipe_pictures/" + uuid.New().String() + ext
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	s.log.Info("recipe image stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.publicURL(key), nil
}
