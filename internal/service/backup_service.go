package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/tidwall/gjson"
)

// BackupPlatform is the part of the Coolify client that deals with database
// backups.
type BackupPlatform interface {
	DatabaseBackups(ctx context.Context, databaseUUID string) (json.RawMessage, error)
	CreateDatabaseBackup(ctx context.Context, databaseUUID string) error
	DownloadDatabaseBackup(ctx context.Context, databaseUUID, filename string) (io.ReadCloser, error)
}

// ArchiveEnqueuer schedules a backup to be copied to object storage.
type ArchiveEnqueuer interface {
	EnqueueArchive(ctx context.Context, databaseUUID, filename string) (string, error)
}

type BackupService interface {
	List(ctx context.Context, databaseUUID string) (json.RawMessage, int, error)
	Create(ctx context.Context, databaseUUID string) error
	Download(ctx context.Context, databaseUUID, filename string) (io.ReadCloser, error)
	Archive(ctx context.Context, databaseUUID, filename string) (string, error)
}

type backupService struct {
	platform BackupPlatform
	archiver ArchiveEnqueuer
}

// NewBackupService builds the service. archiver may be nil when archiving to
// R2 is turned off.
func NewBackupService(platform BackupPlatform, archiver ArchiveEnqueuer) BackupService {
	return &backupService{
		platform: platform,
		archiver: archiver,
	}
}

func (s *backupService) List(ctx context.Context, databaseUUID string) (json.RawMessage, int, error) {
	if databaseUUID == "" {
		return nil, 0, fmt.Errorf("%w: database uuid is required", ErrValidation)
	}

	backups, err := s.platform.DatabaseBackups(ctx, databaseUUID)
	if err != nil {
		return nil, 0, platformError(err)
	}

	total := 0
	if res := gjson.ParseBytes(backups); res.IsArray() {
		total = len(res.Array())
	}
	return backups, total, nil
}

func (s *backupService) Create(ctx context.Context, databaseUUID string) error {
	if databaseUUID == "" {
		return fmt.Errorf("%w: database uuid is required", ErrValidation)
	}

	if err := s.platform.CreateDatabaseBackup(ctx, databaseUUID); err != nil {
		return platformError(err)
	}
	return nil
}

func (s *backupService) Download(ctx context.Context, databaseUUID, filename string) (io.ReadCloser, error) {
	if err := checkBackupTarget(databaseUUID, filename); err != nil {
		return nil, err
	}

	body, err := s.platform.DownloadDatabaseBackup(ctx, databaseUUID, filename)
	if err != nil {
		return nil, platformError(err)
	}
	return body, nil
}

func (s *backupService) Archive(ctx context.Context, databaseUUID, filename string) (string, error) {
	if s.archiver == nil {
		return "", ErrArchiveDisabled
	}
	if err := checkBackupTarget(databaseUUID, filename); err != nil {
		return "", err
	}
	return s.archiver.EnqueueArchive(ctx, databaseUUID, filename)
}

func checkBackupTarget(databaseUUID, filename string) error {
	if databaseUUID == "" || filename == "" {
		return fmt.Errorf("%w: database uuid and filename are required", ErrValidation)
	}
	if strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return fmt.Errorf("%w: invalid filename %q", ErrValidation, filename)
	}
	return nil
}

func platformError(err error) error {
	if errors.Is(err, coolify.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrDeployment, err)
}
