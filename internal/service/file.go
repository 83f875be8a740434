package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/storage"
	"github.com/stridehq/stride/internal/validation"
)

type FileService struct {
	cfg     *config.Config
	files   repository.FileRepository
	storage storage.Storage
}

func NewFileService(cfg *config.Config, files repository.FileRepository, st storage.Storage) *FileService {
	return &FileService{cfg: cfg, files: files, storage: st}
}

// UploadAvatar validates, stores and records a user's avatar image.
// A new upload replaces the previous one.
func (s *FileService) UploadAvatar(ctx context.Context, userID, originalName string, data []byte) (*model.File, error) {
	mimeType, err := validation.ValidateFile(originalName, data, validation.ImageConstraints)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	filename := id + filepath.Ext(originalName)
	storagePath := fmt.Sprintf("avatars/%s/%s", userID, filename)

	if err := s.storage.Upload(ctx, storagePath, bytes.NewReader(data), mimeType); err != nil {
		return nil, fmt.Errorf("uploading avatar: %w", err)
	}

	// Replace the old avatar after the new one is safely stored.
	if old, err := s.files.FileByType("user", userID, model.FileTypeAvatar); err == nil {
		if err := s.storage.Delete(ctx, old.StoragePath); err != nil {
			slog.Warn("deleting previous avatar object failed", "user_id", userID, "error", err)
		}
		if err := s.files.Delete(old.ID); err != nil {
			slog.Warn("deleting previous avatar record failed", "user_id", userID, "error", err)
		}
	}

	file := &model.File{
		ID:           id,
		UserID:       userID,
		OwnerType:    "user",
		OwnerID:      userID,
		Type:         model.FileTypeAvatar,
		Filename:     filename,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         int64(len(data)),
		StoragePath:  storagePath,
		Public:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.files.Create(file); err != nil {
		return nil, fmt.Errorf("recording avatar: %w", err)
	}
	return file, nil
}

// AvatarURL returns a presigned URL for the user's avatar, or "" when
// none is set.
func (s *FileService) AvatarURL(ctx context.Context, userID string) string {
	file, err := s.files.FileByType("user", userID, model.FileTypeAvatar)
	if err != nil {
		return ""
	}

	expiry := s.cfg.S3PresignExpiryPrivate
	if file.Public {
		expiry = s.cfg.S3PresignExpiryPublic
	}

	url, err := s.storage.PresignGet(ctx, file.StoragePath, expiry)
	if err != nil {
		slog.Warn("presigning avatar failed", "user_id", userID, "error", err)
		return ""
	}
	return url
}

// DeleteAvatar removes the user's avatar from storage and the database.
func (s *FileService) DeleteAvatar(ctx context.Context, userID string) error {
	file, err := s.files.FileByType("user", userID, model.FileTypeAvatar)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil
		}
		return err
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("deleting avatar object: %w", err)
	}
	return s.files.Delete(file.ID)
}

// DeleteAllUserFiles removes every stored object a user owns. Used by
// account deletion; errors on individual objects are collected so one
// failure does not strand the rest.
func (s *FileService) DeleteAllUserFiles(ctx context.Context, userID string) error {
	files, err := s.files.AllUserFiles(userID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.StoragePath); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.files.Delete(f.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
