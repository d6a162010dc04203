package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidReference = errors.New("invalid log reference")

// LogStore archives the captured output of failed renderer invocations.
type LogStore interface {
	// Store saves logs under key and returns a reference path/URL
	Store(ctx context.Context, key string, logs []byte) (string, error)
	// Retrieve fetches logs by reference
	Retrieve(ctx context.Context, reference string) ([]byte, error)
}

// FormatLogs renders captured process output the way it is archived.
func FormatLogs(stdout, stderr string) []byte {
	return []byte(fmt.Sprintf("STDOUT:\n%s\nSTDERR:\n%s", stdout, stderr))
}

// S3Config holds S3 connection settings. Bucket and prefix come from the
// target URL.
type S3Config struct {
	Region          string
	Endpoint        string // For MinIO/local S3
	AccessKeyID     string
	SecretAccessKey string
}

// New returns a LogStore for target: "s3://bucket/prefix" selects S3,
// anything else is a local directory.
func New(ctx context.Context, target string, s3cfg S3Config) (LogStore, error) {
	if bucket, prefix, ok := parseS3URL(target); ok {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		return NewS3LogStore(ctx, bucket, prefix, s3cfg)
	}
	return NewLocalLogStore(target)
}

func parseS3URL(target string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(target, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, prefix, bucket != ""
}

// S3LogStore stores logs in S3-compatible storage
type S3LogStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3LogStore creates a new S3-backed log store
func NewS3LogStore(ctx context.Context, bucket, prefix string, cfg S3Config) (*S3LogStore, error) {
	var optFns []func(*config.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	}

	return &S3LogStore{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Store uploads logs to s3://bucket/prefix+key.
func (s *S3LogStore) Store(ctx context.Context, key string, logs []byte) (string, error) {
	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(logs),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logs to S3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

// Retrieve fetches logs from S3
func (s *S3LogStore) Retrieve(ctx context.Context, reference string) ([]byte, error) {
	bucket, key, ok := parseS3URL(reference)
	if !ok || bucket != s.bucket || key == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, reference)
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get logs from S3: %w", err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}
	return data, nil
}

// LocalLogStore stores logs on the local filesystem.
type LocalLogStore struct {
	basePath string
}

// NewLocalLogStore creates a local filesystem log store
func NewLocalLogStore(basePath string) (*LocalLogStore, error) {
	if basePath == "" {
		return nil, errors.New("log directory is required")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &LocalLogStore{basePath: basePath}, nil
}

// Store writes logs to basePath/key, creating parent directories.
func (l *LocalLogStore) Store(ctx context.Context, key string, logs []byte) (string, error) {
	clean := path.Clean("/" + key)
	dst := filepath.Join(l.basePath, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.WriteFile(dst, logs, 0644); err != nil {
		return "", fmt.Errorf("failed to write logs: %w", err)
	}
	return dst, nil
}

// Retrieve fetches logs from local filesystem
func (l *LocalLogStore) Retrieve(ctx context.Context, reference string) ([]byte, error) {
	return os.ReadFile(reference)
}
