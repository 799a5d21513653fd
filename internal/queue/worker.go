package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/coolify-admin/internal/coolify"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// sniffLen is how many leading bytes filetype needs to recognise any type.
const sniffLen = 262

func (q *Queue) HandleArchiveBackupTask(ctx context.Context, task *asynq.Task) error {
	var payload ArchiveBackupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decoding payload: %v: %w", err, asynq.SkipRetry)
	}

	key, err := q.ArchiveBackup(ctx, payload)
	if err != nil {
		slog.Info("backup archive failed", "database", payload.DatabaseUUID, "filename", payload.Filename, "error", err)
		return err
	}

	slog.Info("backup archived", "database", payload.DatabaseUUID, "filename", payload.Filename, "key", key)
	return nil
}

// ArchiveBackup copies one Coolify backup into object storage and returns the
// object key. The download is spooled to a temporary file so the upload can
// be retried by the SDK without holding the backup in memory.
func (q *Queue) ArchiveBackup(ctx context.Context, payload ArchiveBackupPayload) (string, error) {
	body, err := q.backups.DownloadDatabaseBackup(ctx, payload.DatabaseUUID, payload.Filename)
	if err != nil {
		if errors.Is(err, coolify.ErrNotFound) {
			return "", fmt.Errorf("backup %s not found: %w", payload.Filename, asynq.SkipRetry)
		}
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "coolify-backup-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, body); err != nil {
		return "", fmt.Errorf("downloading backup: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := tmp.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(head[:n]); err == nil && kind != types.Unknown {
		contentType = kind.MIME.Value
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("backups/%s/%s-%s", payload.DatabaseUUID, id, payload.Filename)

	if err := q.store.Upload(ctx, key, tmp, contentType); err != nil {
		return "", fmt.Errorf("uploading backup: %w", err)
	}
	return key, nil
}
