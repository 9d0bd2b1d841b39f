package s3_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multiform/core/storage"
	s3storage "github.com/dmitrymomot/multiform/integration/storage/s3"
)

// mockClient records issued requests and returns scripted responses.
type mockClient struct {
	putInput  *s3aws.PutObjectInput
	putBody   []byte
	putErr    error
	getInput  *s3aws.GetObjectInput
	getOutput *s3aws.GetObjectOutput
	getErr    error
	delInput  *s3aws.DeleteObjectInput
	delErr    error
}

func (m *mockClient) PutObject(_ context.Context, params *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	m.putInput = params
	if params.Body != nil {
		data, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		m.putBody = data
	}
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &s3aws.PutObjectOutput{}, nil
}

func (m *mockClient) GetObject(_ context.Context, params *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	m.getInput = params
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getOutput, nil
}

func (m *mockClient) DeleteObject(_ context.Context, params *s3aws.DeleteObjectInput, _ ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error) {
	m.delInput = params
	if m.delErr != nil {
		return nil, m.delErr
	}
	return &s3aws.DeleteObjectOutput{}, nil
}

func newTestStorage(t *testing.T, mock *mockClient, opts ...s3storage.Option) *s3storage.Storage {
	t.Helper()
	cfg := s3storage.Config{Bucket: "uploads", Region: "us-east-1", KeyPrefix: "forms"}
	opts = append(opts, s3storage.WithClient(mock))
	s, err := s3storage.New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresBucketAndRegion(t *testing.T) {
	_, err := s3storage.New(context.Background(), s3storage.Config{Region: "us-east-1"})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)

	_, err = s3storage.New(context.Background(), s3storage.Config{Bucket: "uploads"})
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestStore(t *testing.T) {
	mock := &mockClient{}
	s := newTestStorage(t, mock)

	meta := storage.FileMeta{
		FieldName:   "doc",
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		Index:       1,
	}
	stored, err := s.Store(context.Background(), meta, strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	require.NotNil(t, mock.putInput)
	assert.Equal(t, "uploads", aws.ToString(mock.putInput.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(mock.putInput.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(mock.putInput.ContentLength))
	assert.Equal(t, "pdf bytes", string(mock.putBody))

	assert.Equal(t, aws.ToString(mock.putInput.Key), stored.Key)
	assert.True(t, strings.HasPrefix(stored.Key, "forms/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".pdf"))
	assert.Equal(t, "report.pdf", stored.OriginalName)
	assert.Equal(t, int64(9), stored.Size)
}

func TestStore_KeepFilenameStrategy(t *testing.T) {
	mock := &mockClient{}
	s := newTestStorage(t, mock, s3storage.WithFilenameStrategy(storage.KeepFilename))

	meta := storage.FileMeta{FieldName: "doc", FileName: "../../etc/passwd"}
	stored, err := s.Store(context.Background(), meta, strings.NewReader("x"))
	require.NoError(t, err)

	// Sanitization applies regardless of strategy, and keys never collide
	// because each object lands under a generated prefix segment.
	assert.Equal(t, "passwd", stored.FileName)
	assert.True(t, strings.HasSuffix(stored.Key, "/passwd"))
	assert.NotContains(t, stored.Key, "..")
}

func TestStore_DegenerateNameGetsGenerated(t *testing.T) {
	mock := &mockClient{}
	s := newTestStorage(t, mock, s3storage.WithFilenameStrategy(storage.KeepFilename))

	stored, err := s.Store(context.Background(), storage.FileMeta{FieldName: "doc", FileName: ".."}, strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.FileName)
	assert.NotEqual(t, "..", stored.FileName)
}

func TestStore_SourceErrorSkipsUpload(t *testing.T) {
	mock := &mockClient{}
	s := newTestStorage(t, mock)

	srcErr := errors.New("upstream limit hit")
	body := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(srcErr))

	_, err := s.Store(context.Background(), storage.FileMeta{FieldName: "doc"}, body)
	require.ErrorIs(t, err, srcErr)
	assert.NotErrorIs(t, err, storage.ErrStoreFailed)
	assert.Nil(t, mock.putInput)
}

func TestStore_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		putErr error
		want   error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, storage.ErrAccessDenied},
		{"request timeout", &smithy.GenericAPIError{Code: "RequestTimeout"}, storage.ErrOperationTimeout},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, storage.ErrServiceUnavailable},
		{"missing bucket", &types.NoSuchBucket{}, storage.ErrBucketNotFound},
		{"unknown api error", &smithy.GenericAPIError{Code: "Teapot"}, storage.ErrStoreFailed},
		{"plain error", errors.New("connection refused"), storage.ErrStoreFailed},
		{"canceled", context.Canceled, storage.ErrOperationCanceled},
		{"deadline", context.DeadlineExceeded, storage.ErrOperationTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t, &mockClient{putErr: tt.putErr})
			_, err := s.Store(context.Background(), storage.FileMeta{FieldName: "doc"}, strings.NewReader("x"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("returns object body", func(t *testing.T) {
		mock := &mockClient{getOutput: &s3aws.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("stored bytes")),
		}}
		s := newTestStorage(t, mock)

		rc, err := s.Open(context.Background(), "forms/abc/report.pdf")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "stored bytes", string(data))
		assert.Equal(t, "forms/abc/report.pdf", aws.ToString(mock.getInput.Key))
	})

	t.Run("missing key", func(t *testing.T) {
		s := newTestStorage(t, &mockClient{getErr: &types.NoSuchKey{}})
		_, err := s.Open(context.Background(), "forms/missing")
		assert.ErrorIs(t, err, storage.ErrFileNotFound)
	})
}

func TestRemove(t *testing.T) {
	t.Run("issues delete", func(t *testing.T) {
		mock := &mockClient{}
		s := newTestStorage(t, mock)

		require.NoError(t, s.Remove(context.Background(), "forms/abc/report.pdf"))
		assert.Equal(t, "uploads", aws.ToString(mock.delInput.Bucket))
		assert.Equal(t, "forms/abc/report.pdf", aws.ToString(mock.delInput.Key))
	})

	t.Run("backend failure", func(t *testing.T) {
		s := newTestStorage(t, &mockClient{delErr: &smithy.GenericAPIError{Code: "AccessDenied"}})
		err := s.Remove(context.Background(), "forms/abc")
		assert.ErrorIs(t, err, storage.ErrAccessDenied)
	})
}
