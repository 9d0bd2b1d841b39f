package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrymomot/multiform/core/storage"
)

// Compile-time check that Storage implements the storage.Engine interface.
var _ storage.Engine = (*Storage)(nil)

// Client defines the S3 operations used by Storage. Narrow by design so
// tests can substitute a mock.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3aws.GetObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// Storage commits uploads to an S3 bucket. Thread-safe; independent sessions
// share one instance.
type Storage struct {
	client        Client
	bucket        string
	keyPrefix     string
	uploadTimeout time.Duration
	strategy      storage.FilenameStrategy
}

// Config contains S3 engine configuration. The env tags allow loading via
// core/config.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION,required"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // For S3-compatible services like MinIO, Wasabi
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // Required for MinIO and some S3-compatible services
	KeyPrefix      string `env:"S3_KEY_PREFIX"`       // Optional prefix for every object key
}

// Option defines a function that configures Storage.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	uploadTimeout time.Duration
	strategy      storage.FilenameStrategy
}

// WithClient sets a custom pre-configured S3 client.
// Primarily used for testing with mocks, but also allows advanced client
// customization.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
// Useful for custom timeout, proxy, or TLS configuration.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithUploadTimeout bounds each upload operation.
// Prevents hanging uploads from consuming resources indefinitely.
// If not set, relies on the context deadline from the caller.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = timeout
	}
}

// WithFilenameStrategy sets how object names are derived from part metadata.
// The default is storage.RandomFilename.
func WithFilenameStrategy(strategy storage.FilenameStrategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

// New creates an S3 storage engine. Supports both AWS S3 and S3-compatible
// services.
func New(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", storage.ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}

		// Static credentials when provided; IAM roles and env vars otherwise.
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if o.httpClient != nil {
			awsOptions = append(awsOptions, awsconfig.WithHTTPClient(o.httpClient))
		}

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS config: %v", storage.ErrInvalidConfig, err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &Storage{
		client:        client,
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		uploadTimeout: o.uploadTimeout,
		strategy:      o.strategy,
	}, nil
}

// Store uploads the body as one object. Nothing is visible in the bucket
// unless PutObject succeeds, so failure cleanup is a no-op; body read errors
// propagate unwrapped before any request is issued.
func (s *Storage) Store(ctx context.Context, meta storage.FileMeta, body io.Reader) (*storage.StoredFile, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	// PutObject signs over the payload length, so the (already limit-bounded)
	// body is accumulated before upload.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, err
	}

	strategy := s.strategy
	if strategy == nil {
		strategy = storage.RandomFilename
	}
	name := storage.SanitizeFilename(strategy(meta))
	if name == "" {
		name = uuid.NewString()
	}
	key := s.objectKey(name)

	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentType:   aws.String(meta.ContentType),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	if err != nil {
		return nil, classifyS3Error(err, "upload file")
	}

	return &storage.StoredFile{
		Key:          key,
		FieldName:    meta.FieldName,
		OriginalName: meta.FileName,
		FileName:     name,
		ContentType:  meta.ContentType,
		Size:         int64(buf.Len()),
	}, nil
}

// Open returns a reader over a previously stored object.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3aws.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "download file")
	}
	return out.Body, nil
}

// Remove deletes a previously stored object.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classifyS3Error(err, "delete file")
	}
	return nil
}

// objectKey namespaces stored objects under a generated prefix so identical
// sanitized names from concurrent sessions never collide.
func (s *Storage) objectKey(name string) string {
	return path.Join(s.keyPrefix, uuid.NewString(), name)
}
