package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxSizeReader(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		maxSize int64
		wantN   int
		wantErr string
	}{
		{name: "under_limit", input: []byte("hello"), maxSize: 10, wantN: 5},
		{name: "exact_limit", input: []byte("hello"), maxSize: 5, wantN: 5},
		{name: "over_limit", input: []byte("hello world"), maxSize: 5, wantN: 5, wantErr: "reach limit of 5 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewMaxSizeReader(bytes.NewReader(tt.input), tt.maxSize))
			assert.Len(t, got, tt.wantN)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var limitErr *ReachLimitError
			require.ErrorAs(t, err, &limitErr)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{500, "500 bytes"},
		{2 * 1024, "2.00 KB"},
		{5 * 1024 * 1024, "5.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.bytes))
	}
}

func TestDetectImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	mimeType, ext, ok := DetectImage(png)
	assert.True(t, ok)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, "png", ext)

	_, _, ok = DetectImage([]byte("<html><body>nope</body></html>"))
	assert.False(t, ok)
}

type fakePutter struct {
	got *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.got = in
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	putter := &fakePutter{}
	op, err := NewS3Operator(putter, "cards", "https://cdn.example.com/media")
	require.NoError(t, err)

	url, err := op.Upload(context.Background(), "listings/abc.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/listings/abc.png", url)
	assert.Equal(t, "cards", aws.ToString(putter.got.Bucket))
	assert.Equal(t, "image/png", aws.ToString(putter.got.ContentType))

	putter.err = errors.New("denied")
	_, err = op.Upload(context.Background(), "listings/abc.png", "image/png", []byte("x"))
	assert.Error(t, err)
}
