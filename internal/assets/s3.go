package assets

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid/v5"
)

// S3Config holds connection settings for an S3-compatible endpoint (MinIO in
// development, S3 proper in production).
type S3Config struct {
	Region        string
	Endpoint      string // base endpoint, empty for AWS default
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string // prefix for returned object URLs
}

// S3Uploader implements Uploader on top of an S3-compatible object store.
type S3Uploader struct {
	client *s3.Client
	bucket string
	public string
}

// NewS3Uploader builds an S3 client with static credentials.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		public: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// objectKey returns a date-partitioned random key preserving the extension.
func objectKey(filename string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	d := time.Now()
	return fmt.Sprintf("assets/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), id, path.Ext(filename)), nil
}

// Upload stores the object and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key, err := objectKey(filename)
	if err != nil {
		return "", err
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return u.public + "/" + key, nil
}
