package s3

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Client struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
	Expires   time.Duration
}

// NewFromEnv builds an S3-compatible client (AWS, R2, MinIO) from AWS_* variables.
// It returns nil, nil when AWS_BUCKET is unset: covers are optional.
func NewFromEnv(ctx context.Context) (*S3Client, error) {
	bucket := os.Getenv("AWS_BUCKET")
	if bucket == "" {
		return nil, nil
	}
	endpoint := os.Getenv("AWS_ENDPOINT")

	opts := []func(*config.LoadOptions) error{config.WithRegion(os.Getenv("AWS_REGION"))}
	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(id, os.Getenv("AWS_SECRET_ACCESS_KEY"), ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = os.Getenv("AWS_PATH_STYLE") == "1"
		}
	})

	expires := 15 * time.Minute
	if d, err := time.ParseDuration(os.Getenv("COVER_URL_TTL")); err == nil && d > 0 {
		expires = d
	}

	return &S3Client{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		Expires:   expires,
	}, nil
}

// CoverURL creates a presigned GET URL for a book cover object.
func (s *S3Client) CoverURL(ctx context.Context, objectKey string) (string, error) {
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.Expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign cover %s: %w", objectKey, err)
	}
	return req.URL, nil
}
