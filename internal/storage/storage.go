// Package storage puts uploaded files into an S3-compatible bucket (AWS S3 or
// Cloudflare R2).
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/formcraft/formcraft-backend/config"
	"github.com/google/uuid"
)

// FileStorage is what the upload handler writes through.
type FileStorage interface {
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// BucketStorage implements FileStorage on an S3 API client.
type BucketStorage struct {
	client    objectAPI
	presigner presignAPI
	bucket    string
}

// New builds the configured storage. It returns (nil, nil) when no provider
// is configured; callers treat that as uploads being unavailable.
func New(ctx context.Context, cfg config.StorageConfig) (*BucketStorage, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "r2":
		endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
		client := s3.New(s3.Options{
			Region:       "auto",
			BaseEndpoint: &endpoint,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		})
		return newBucketStorage(client, cfg.Bucket), nil
	case "s3":
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return newBucketStorage(s3.NewFromConfig(awsCfg), cfg.Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

func newBucketStorage(client *s3.Client, bucket string) *BucketStorage {
	return &BucketStorage{client: client, presigner: s3.NewPresignClient(client), bucket: bucket}
}

// validateKey rejects storage keys containing path traversal segments.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

func (s *BucketStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object failed: %w", err)
	}
	return nil
}

func (s *BucketStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return fmt.Errorf("delete object failed: %w", err)
	}
	return nil
}

// URL returns a presigned download URL valid for five minutes.
func (s *BucketStorage) URL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	name := path.Base(key)
	if idx := strings.Index(name, "_"); idx >= 0 {
		name = name[idx+1:]
	}
	disposition := fmt.Sprintf("attachment; filename=\"%s\"", name)
	out, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     &s.bucket,
		Key:                        &key,
		ResponseContentDisposition: &disposition,
	}, s3.WithPresignExpires(5*time.Minute))
	if err != nil {
		return "", fmt.Errorf("presign failed: %w", err)
	}
	return out.URL, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName keeps the base name and replaces anything outside [A-Za-z0-9._-].
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

// SubmissionKey is submissions/{formId}/{uuid}_{name}.
func SubmissionKey(formID, filename string) string {
	return fmt.Sprintf("submissions/%s/%s_%s", formID, uuid.NewString(), SanitizeName(filename))
}
