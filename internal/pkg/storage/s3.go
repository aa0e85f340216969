// Package storage wraps the object storage collaborator: put/get a blob by
// key and return a durable URL.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pdfwise/core/internal/config"
)

// ErrSourceNotFound reports that the referenced object does not exist.
var ErrSourceNotFound = errors.New("source object not found")

// ObjectStore is the object storage contract the core consumes.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	URL(key string) string
}

// S3 implements ObjectStore over AWS S3 or any S3-compatible endpoint.
type S3 struct {
	client       *s3.Client
	bucket       string
	region       string
	customDomain string
}

// NewS3 builds the client from explicit credentials; nothing is read from
// ambient process state.
func NewS3(opts config.S3Options) (*S3, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket and region are required")
	}

	clientOpts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		clientOpts.BaseEndpoint = aws.String(endpoint)
		clientOpts.UsePathStyle = true
	}

	return &S3{
		client:       s3.New(clientOpts),
		bucket:       bucket,
		region:       region,
		customDomain: strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/"),
	}, nil
}

// Get downloads an object. A missing key maps to ErrSourceNotFound.
func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, key)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Put uploads an object and returns its durable URL.
func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// URL returns the public URL for a key.
func (s *S3) URL(key string) string {
	if s.customDomain != "" {
		return s.customDomain + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
