package config

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/waymark/internal/errors"
)

// S3API is the slice of the S3 client the loader needs. Satisfied by
// *s3.Client.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads route manifests from local files or S3.
type Loader struct {
	s3 S3API
}

// LoadOption configures a Loader.
type LoadOption func(*Loader)

// WithS3Client enables s3:// manifest references.
func WithS3Client(client S3API) LoadOption {
	return func(l *Loader) {
		l.s3 = client
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoadOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and parses a manifest. The ref is a local path, or
// "s3://bucket/key" when an S3 client is configured.
func (l *Loader) Load(ctx context.Context, ref string) (*Manifest, error) {
	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New("W004").WithLocation(ref).Wrap(err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.applyDefaults()
	return &m, nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	if bucket, key, ok := splitS3Ref(ref); ok {
		if l.s3 == nil {
			return nil, errors.New("W003").WithLocation(ref).
				WithDetail("no S3 client configured for s3:// references")
		}
		out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, errors.New("W003").WithLocation(ref).Wrap(err)
		}
		defer out.Body.Close()
		data, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, errors.New("W003").WithLocation(ref).Wrap(err)
		}
		return data, nil
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, errors.New("W003").WithLocation(ref).Wrap(err)
	}
	return data, nil
}

// splitS3Ref parses "s3://bucket/key/path" references.
func splitS3Ref(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
