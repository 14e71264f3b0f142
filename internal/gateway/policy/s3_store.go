package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// ObjectClient is the subset of the S3 API the store uses.
type ObjectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the settings document as one JSON object in a bucket. A
// missing object reads as an empty document.
type S3Store struct {
	client ObjectClient
	bucket string
	key    string
}

// NewS3Store uses the given client.
func NewS3Store(client ObjectClient, bucket string, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// NewS3Client builds an S3 client from the service configuration. Static
// credentials are used when configured, the default chain otherwise.
func NewS3Client(ctx context.Context, cfg common.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-S3CONFIG: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	log.Printf("🪣 S3 policy store: bucket=%s endpoint=%q", cfg.Bucket, cfg.Endpoint)
	return client, nil
}

func (s *S3Store) Load(ctx context.Context) (*Config, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if isMissingObject(err) {
		return NewConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-LOAD: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("GW-POLICY-LOAD: %w", err)
	}
	cfg := &Config{}
	if err := common.Unmarshal(payload, cfg); err != nil {
		return nil, fmt.Errorf("GW-POLICY-DECODE: %w", err)
	}
	return cfg.Normalize(), nil
}

func (s *S3Store) Save(ctx context.Context, cfg *Config) error {
	payload, err := common.Marshal(cfg.Clone().Normalize())
	if err != nil {
		return fmt.Errorf("GW-POLICY-ENCODE: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("GW-POLICY-SAVE: %w", err)
	}
	return nil
}

func isMissingObject(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
