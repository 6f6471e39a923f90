package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/storage"
	pollwise_errors "pollwise/pkg/errors"
)

// UploadService issues presigned PUT URLs for poll images. A failed or
// skipped upload never blocks a poll create/update; the poll just proceeds
// without the image field.
type UploadService struct {
	storage *storage.Client
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

type PresignImageInput struct {
	UploaderID  uuid.UUID
	FileName    string
	ContentType string
	FileSize    int64
}

type PresignImageResult struct {
	UploadURL string            `json:"upload_url"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (s *UploadService) PresignImageUpload(ctx context.Context, in PresignImageInput) (PresignImageResult, error) {
	if s.storage == nil {
		return PresignImageResult{}, errors.New("s3 storage is not configured")
	}
	if in.UploaderID == uuid.Nil || in.FileName == "" || in.ContentType == "" {
		return PresignImageResult{}, pollwise_errors.ErrInvalidInput
	}
	if err := s.storage.ValidateImage(in.ContentType, in.FileSize); err != nil {
		if in.FileSize > storage.MaxImageBytes {
			return PresignImageResult{}, pollwise_errors.ErrTooLarge
		}
		return PresignImageResult{}, pollwise_errors.ErrInvalidInput
	}

	key := fmt.Sprintf("poll-images/%s/%s%s", in.UploaderID, uuid.New(), s.storage.Ext(in.ContentType))
	uploadURL, headers, err := s.storage.PresignPut(ctx, key, in.ContentType, in.FileSize)
	if err != nil {
		return PresignImageResult{}, err
	}

	return PresignImageResult{
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		Headers:   headers,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}
