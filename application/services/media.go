package services

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	pkgerrors "mindbloom-backend/pkg/errors"

	"go.uber.org/zap"
)

// AllowedExtensions are the upload types accepted by the media service.
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
}

// MediaService stores uploaded files and their metadata.
type MediaService struct {
	Base
	repo     ports.MediaRepository
	files    ports.FileStore
	maxBytes int64
}

// NewMediaService creates the service. Uploads larger than maxBytes are rejected.
func NewMediaService(base Base, repo ports.MediaRepository, files ports.FileStore, maxBytes int64) *MediaService {
	return &MediaService{Base: base, repo: repo, files: files, maxBytes: maxBytes}
}

// MaxBytes is the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores r under a generated name and records its metadata.
func (s *MediaService) Upload(ctx context.Context, actor *Actor, filename, contentType string, r io.Reader) (*entities.MediaFile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	defaultType, ok := AllowedExtensions[ext]
	if !ok {
		return nil, pkgerrors.NewValidationError("File type not allowed").WithCode("UNSUPPORTED_FILE_TYPE")
	}
	if mt, _, err := mime.ParseMediaType(contentType); err != nil || mt == "application/octet-stream" {
		contentType = defaultType
	}

	id := newID()
	stored := id + ext
	size, err := s.files.Save(ctx, stored, r, s.maxBytes)
	if err != nil {
		return nil, err
	}

	file := &entities.MediaFile{
		ID:           id,
		UserID:       actor.UserID,
		OriginalName: filepath.Base(filename),
		StoredName:   stored,
		Size:         size,
		ContentType:  contentType,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Save(ctx, file); err != nil {
		if derr := s.files.Delete(ctx, stored); derr != nil {
			s.log().Warn("Failed to remove orphaned upload", zap.String("file", stored), zap.Error(derr))
		}
		return nil, err
	}
	s.created("media")
	return file, nil
}

// List returns the caller's uploads, newest first.
func (s *MediaService) List(ctx context.Context, actor *Actor) ([]*entities.MediaFile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, actor.UserID)
}

// Get returns the metadata of one of the caller's uploads.
func (s *MediaService) Get(ctx context.Context, actor *Actor, id string) (*entities.MediaFile, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.UserID != actor.UserID {
		return nil, pkgerrors.NewNotFoundError("file")
	}
	return file, nil
}

// Open returns the metadata and contents of one of the caller's uploads.
func (s *MediaService) Open(ctx context.Context, actor *Actor, id string) (*entities.MediaFile, io.ReadCloser, error) {
	file, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, file.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return file, rc, nil
}

// Delete removes an upload's contents and metadata.
func (s *MediaService) Delete(ctx context.Context, actor *Actor, id string) error {
	file, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, file.StoredName); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
