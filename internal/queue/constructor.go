package queue

import (
	"context"
	"io"
)

// BackupSource downloads database backups from Coolify.
type BackupSource interface {
	DownloadDatabaseBackup(ctx context.Context, databaseUUID, filename string) (io.ReadCloser, error)
}

// ObjectStore keeps archived backups.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
}

type Queue struct {
	backups BackupSource
	store   ObjectStore
}

func NewQueue(backups BackupSource, store ObjectStore) *Queue {
	return &Queue{
		backups: backups,
		store:   store,
	}
}

const TaskTypeArchiveBackup = "backup:archive"

type ArchiveBackupPayload struct {
	DatabaseUUID string `json:"database_uuid"`
	Filename     string `json:"filename"`
}
