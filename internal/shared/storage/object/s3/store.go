// Package s3 stores CVs in an S3 bucket under an optional key prefix.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lbs-connect/internal/shared/storage/object"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store implements object.Store and object.Presigner. On AWS, objects are
// encrypted with the KMS key when one is set, otherwise with SSE-S3.
type Store struct {
	api      objectAPI
	presign  presignAPI
	bucket   string
	prefix   string
	kmsKeyID string
	plain    bool
}

// Options configures New. Endpoint and static keys are only needed for
// S3-compatible services; on AWS the default credential chain is used.
type Options struct {
	Region          string
	Bucket          string
	Prefix          string
	KMSKeyID        string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// New loads the AWS config described by opts and returns a store for its bucket.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3: bucket is required")
	}
	var load []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		load = append(load, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		load = append(load, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	kms := strings.TrimSpace(opts.KMSKeyID)
	if endpoint != "" {
		// Most S3-compatible services reject SSE headers.
		kms = ""
	}
	return &Store{
		api:      client,
		presign:  s3.NewPresignClient(client),
		bucket:   opts.Bucket,
		prefix:   strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		kmsKeyID: kms,
		plain:    endpoint != "",
	}, nil
}

func (s *Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put uploads r under key. The body is buffered so the request can be signed
// with its length.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("s3: read body: %w", err)
	}
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	s.encrypt(in)
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("s3: put %s: %w", aws.ToString(in.Key), err)
	}
	return int64(len(data)), nil
}

// Open streams the object stored under key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey := s.objectKey(key)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return nil, fmt.Errorf("s3: get %s: %w", objectKey, err)
	}
	return out.Body, nil
}

// PresignPut signs a PUT for key. The client must send the returned headers
// unchanged.
func (s *Store) PresignPut(ctx context.Context, key, contentType string, sizeBytes int64, ttl time.Duration) (object.PresignedUpload, error) {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(sizeBytes),
	}
	s.encrypt(in)
	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return object.PresignedUpload{}, fmt.Errorf("s3: presign %s: %w", aws.ToString(in.Key), err)
	}
	headers := make(map[string]string)
	for name, values := range req.SignedHeader {
		if len(values) > 0 && !strings.EqualFold(name, "host") {
			headers[name] = values[0]
		}
	}
	return object.PresignedUpload{URL: req.URL, Key: key, Headers: headers, ExpiresIn: ttl}, nil
}

func (s *Store) encrypt(in *s3.PutObjectInput) {
	if s.plain {
		return
	}
	if s.kmsKeyID == "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
		return
	}
	in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
	in.SSEKMSKeyId = aws.String(s.kmsKeyID)
}

var (
	_ object.Store     = (*Store)(nil)
	_ object.Presigner = (*Store)(nil)
)
