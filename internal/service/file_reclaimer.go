package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nidoapp/nido-api/pkg/jobs"
	"github.com/nidoapp/nido-api/pkg/storage"
)

const jobTypeFileDelete = "file.delete"

// FileReclaimer removes orphaned upload files in the background. Rows are
// always deleted before their files, so a crash can only leave stray files
// behind, never dangling database references.
type FileReclaimer struct {
	queue  *jobs.Queue
	store  *storage.UploadStore
	logger *zap.Logger
}

// NewFileReclaimer wires a worker queue that deletes files from the store.
func NewFileReclaimer(store *storage.UploadStore, workers, maxRetries int, retryDelay time.Duration, logger *zap.Logger) *FileReclaimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FileReclaimer{store: store, logger: logger}
	r.queue = jobs.NewQueue("file-reclaim", r.handle, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	return r
}

// Start launches the worker pool.
func (r *FileReclaimer) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop drains the worker pool.
func (r *FileReclaimer) Stop() {
	r.queue.Stop()
}

// Reclaim schedules deletion of the file behind a public URL.
func (r *FileReclaimer) Reclaim(fileURL string) {
	if fileURL == "" {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeFileDelete,
		Payload: r.store.FilenameFromURL(fileURL),
	}
	if err := r.queue.Enqueue(job); err != nil {
		r.logger.Warn("failed to enqueue file reclaim", zap.String("file_url", fileURL), zap.Error(err))
	}
}

func (r *FileReclaimer) handle(_ context.Context, job jobs.Job) error {
	filename, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	if err := r.store.Delete(filename); err != nil {
		return err
	}
	r.logger.Debug("upload file reclaimed", zap.String("filename", filename))
	return nil
}
