package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3svc.PutObjectInput, opts ...func(*s3svc.Options)) (*s3svc.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is prefixed to the object name to build the proof URL.
	// Defaults to the path-style endpoint address.
	PublicBaseURL string
}

// S3 stores proof images in an S3-compatible bucket.
type S3 struct {
	cfg    S3Config
	client s3Client
	logger *slog.Logger
}

func NewS3(cfg S3Config, logger *slog.Logger) *S3 {
	opts := s3svc.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &S3{cfg: cfg, client: s3svc.New(opts), logger: logger.With("component", "upload")}
}

// Upload stores the image under the bucket's own credentials; the
// request-supplied token is not needed here.
func (s *S3) Upload(ctx context.Context, _, filename, contentType string, data []byte) (*Result, error) {
	if err := Validate(filename, contentType, int64(len(data))); err != nil {
		return nil, err
	}
	name := ObjectName(filename, time.Now())

	_, err := s.client.PutObject(ctx, &s3svc.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	url := s.publicURL(name)
	s.logger.Info("proof stored", "key", name)
	return &Result{URL: url, ViewLink: url}, nil
}

func (s *S3) publicURL(name string) string {
	base := s.cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}
