// Package storage uploads listing images to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the subset of the S3 client used by S3Operator.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Operator struct {
	Client         ObjectPutter
	Bucket         string
	PublicEndpoint *url.URL
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether enough is configured to build a client.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.PublicBaseURL != ""
}

func NewS3Operator(client ObjectPutter, bucket, publicBaseURL string) (*S3Operator, error) {
	const op = "storage.NewS3Operator"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse public base url: %w", op, err)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

// NewFromConfig builds the SDK client from static credentials and a custom endpoint.
func NewFromConfig(ctx context.Context, cfg S3Config) (*S3Operator, error) {
	const op = "storage.NewFromConfig"
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: load aws config: %w", op, err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return NewS3Operator(client, cfg.Bucket, cfg.PublicBaseURL)
}

// Upload stores content at key and returns its public URL.
func (s *S3Operator) Upload(ctx context.Context, key, contentType string, content []byte) (string, error) {
	const op = "storage.Upload"
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: put %q: %w", op, key, err)
	}
	uri := *s.PublicEndpoint
	uri.Path = path.Join("/", uri.Path, key)
	return uri.String(), nil
}
