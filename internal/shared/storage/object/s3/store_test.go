package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lbs-connect/internal/shared/storage/object"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	objects map[string]string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type fakePresign struct {
	in *s3.PutObjectInput
}

func (f *fakePresign) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.in = in
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc",
		Method: http.MethodPut,
		SignedHeader: http.Header{
			"Host":         []string{"bucket.s3.amazonaws.com"},
			"Content-Type": []string{aws.ToString(in.ContentType)},
		},
	}, nil
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "user-1/1700000000000.pdf", "user-1/1700000000000.pdf"},
		{"cvs", "user-1/1700000000000.pdf", "cvs/user-1/1700000000000.pdf"},
		{"cvs", "/user-1/1700000000000.pdf", "cvs/user-1/1700000000000.pdf"},
		{"cvs/2026", "user-1/1700000000000.pdf", "cvs/2026/user-1/1700000000000.pdf"},
	}
	for _, tc := range tests {
		s := &Store{prefix: tc.prefix}
		if got := s.objectKey(tc.key); got != tc.want {
			t.Fatalf("objectKey(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.want)
		}
	}
}

func TestPutEncryptsUnderPrefix(t *testing.T) {
	api := &fakeS3{}
	s := &Store{api: api, bucket: "cv-bucket", prefix: "cvs", kmsKeyID: "kms-1"}

	n, err := s.Put(context.Background(), "u1/1.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 8 || string(api.body) != "%PDF-1.4" {
		t.Fatalf("unexpected size %d body %q", n, api.body)
	}
	if aws.ToString(api.put.Key) != "cvs/u1/1.pdf" || aws.ToInt64(api.put.ContentLength) != 8 {
		t.Fatalf("unexpected input %+v", api.put)
	}
	if api.put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(api.put.SSEKMSKeyId) != "kms-1" {
		t.Fatalf("expected kms encryption")
	}
}

func TestOpenMapsMissingKey(t *testing.T) {
	s := &Store{api: &fakeS3{objects: map[string]string{"u1/1.pdf": "data"}}, bucket: "cv-bucket"}

	rc, err := s.Open(context.Background(), "u1/1.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc.Close()

	if _, err := s.Open(context.Background(), "u1/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPresignPutDropsHostHeader(t *testing.T) {
	ps := &fakePresign{}
	s := &Store{presign: ps, bucket: "cv-bucket"}

	up, err := s.PresignPut(context.Background(), "u1/1.pdf", "application/pdf", 1024, 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignPut: %v", err)
	}
	if up.Key != "u1/1.pdf" || up.ExpiresIn != 15*time.Minute || !strings.Contains(up.URL, "u1/1.pdf") {
		t.Fatalf("unexpected upload %+v", up)
	}
	if _, ok := up.Headers["Host"]; ok {
		t.Fatalf("host header must not be returned")
	}
	if up.Headers["Content-Type"] != "application/pdf" {
		t.Fatalf("expected content type header, got %v", up.Headers)
	}
	if ps.in.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected SSE-S3 without a kms key")
	}
}

func TestCompatibleEndpointSkipsEncryption(t *testing.T) {
	api := &fakeS3{}
	s := &Store{api: api, bucket: "cvs", plain: true}
	if _, err := s.Put(context.Background(), "u1/1.pdf", "application/pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if api.put.ServerSideEncryption != "" || api.put.SSEKMSKeyId != nil {
		t.Fatalf("expected no SSE headers, got %q", api.put.ServerSideEncryption)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Region: "eu-west-2"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}
