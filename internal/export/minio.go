package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds object storage connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioSink uploads exports to an S3-compatible bucket.
type MinioSink struct {
	mc     *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinioSink creates the client. The bucket is created on first export if missing.
func NewMinioSink(cfg MinioConfig) (*MinioSink, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioSink{mc: mc, bucket: cfg.Bucket, now: time.Now}, nil
}

func (s *MinioSink) ensureBucket(ctx context.Context) error {
	exists, err := s.mc.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectName returns the key an export called name is stored under at t.
func ObjectName(name string, t time.Time) string {
	return "exports/" + t.UTC().Format("20060102T150405Z") + "-" + name
}

// Export uploads text and returns its s3:// location.
func (s *MinioSink) Export(ctx context.Context, name, text string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := ObjectName(name, s.now())
	_, err := s.mc.PutObject(ctx, s.bucket, key, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
