package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ImageStore keeps project thumbnails in object storage.
type ImageStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	KeyFromURL(url string) (string, bool)
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// StorageOptions configures the S3-compatible bucket holding thumbnails.
type StorageOptions struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// StorageService uploads and removes project images in an S3-compatible bucket.
type StorageService struct {
	client        s3API
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

// NewStorageService builds a path-style S3 client against opts.Endpoint.
func NewStorageService(opts StorageOptions, logger *slog.Logger) *StorageService {
	endpoint := opts.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.New(s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})

	publicBase := opts.PublicBaseURL
	if publicBase == "" {
		publicBase = strings.TrimRight(endpoint, "/") + "/" + opts.Bucket
	}

	return newStorageService(client, opts.Bucket, publicBase, logger)
}

func newStorageService(client s3API, bucket, publicBaseURL string, logger *slog.Logger) *StorageService {
	return &StorageService{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload stores body under key and returns its public URL.
func (s *StorageService) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=3600"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", models.ErrUpstream, key, err)
	}

	s.logger.Info("image uploaded", slog.String("key", key), slog.Int64("size", size))
	return s.publicURL(key), nil
}

// Delete removes keys in one batch. Missing objects are not an error.
func (s *StorageService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("%w: delete objects: %v", models.ErrUpstream, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("%w: delete %s: %s", models.ErrUpstream, aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// KeyFromURL returns the object key behind a URL this store produced.
func (s *StorageService) KeyFromURL(url string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

func (s *StorageService) publicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
