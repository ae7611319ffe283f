package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/baharkarakas/tradebinder/internal/apperr"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/logger"
	"github.com/baharkarakas/tradebinder/internal/storage"
)

// ImageService stores listing photos in object storage and hands back their public URL.
type ImageService struct {
	op       *storage.S3Operator
	maxBytes int64
}

// NewImageService accepts a nil operator; uploads then fail as unavailable.
func NewImageService(op *storage.S3Operator, maxBytes int64) *ImageService {
	return &ImageService{op: op, maxBytes: maxBytes}
}

type UploadResult struct {
	URL string `json:"url"`
}

func (s *ImageService) Upload(ctx context.Context, actor auth.Principal, r io.Reader) (UploadResult, error) {
	if s.op == nil {
		return UploadResult{}, apperr.Unavailable("image uploads are not configured")
	}

	content, err := io.ReadAll(storage.NewMaxSizeReader(r, s.maxBytes))
	if err != nil {
		var limit *storage.ReachLimitError
		if errors.As(err, &limit) {
			return UploadResult{}, apperr.BadRequest("%s", limit.Error())
		}
		return UploadResult{}, apperr.BadRequest("could not read upload")
	}
	if len(content) == 0 {
		return UploadResult{}, apperr.BadRequest("image file is required")
	}

	mimeType, ext, ok := storage.DetectImage(content)
	if !ok {
		return UploadResult{}, apperr.BadRequest("unsupported image type %q", mimeType)
	}

	key := fmt.Sprintf("listings/%s.%s", uuid.NewString(), ext)
	url, err := s.op.Upload(ctx, key, mimeType, content)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload image: %w", err)
	}
	logger.FromContext(ctx).Info("image uploaded", "key", key, "bytes", len(content), "user_id", actor.UserID)
	return UploadResult{URL: url}, nil
}
