package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/storage"
)

type recordingPutter struct {
	keys []string
}

func (p *recordingPutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.keys = append(p.keys, aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestImageUpload(t *testing.T) {
	putter := &recordingPutter{}
	op, err := storage.NewS3Operator(putter, "images", "https://cdn.example.com")
	require.NoError(t, err)
	svc := NewImageService(op, 64)
	actor := auth.Principal{UserID: "u1"}
	ctx := context.Background()

	res, err := svc.Upload(ctx, actor, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.Len(t, putter.keys, 1)
	assert.True(t, strings.HasPrefix(putter.keys[0], "listings/"))
	assert.True(t, strings.HasSuffix(putter.keys[0], ".png"))
	assert.Equal(t, "https://cdn.example.com/"+putter.keys[0], res.URL)

	_, err = svc.Upload(ctx, actor, strings.NewReader("plain text, not an image"))
	assertKind(t, err, apperr.KindBadRequest)

	_, err = svc.Upload(ctx, actor, bytes.NewReader(append(pngHeader, make([]byte, 100)...)))
	assertKind(t, err, apperr.KindBadRequest)

	_, err = svc.Upload(ctx, actor, bytes.NewReader(nil))
	assertKind(t, err, apperr.KindBadRequest)
	assert.Len(t, putter.keys, 1)
}

func TestImageUpload_NotConfigured(t *testing.T) {
	_, err := NewImageService(nil, 1024).Upload(context.Background(), auth.Principal{UserID: "u1"}, bytes.NewReader(pngHeader))
	assertKind(t, err, apperr.KindUnavailable)
}
