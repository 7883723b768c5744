package backup

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
)

const (
	ExportFileName = "gym_backup.json"
	LastSyncKey    = "last_google_sheets_sync"
)

var (
	ErrSyncNotConfigured = errors.New("sync is not configured")
	ErrRemoteRejected    = errors.New("remote rejected the request")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=backup_test

type snapshotRepo interface {
	GetAllSessions(ctx context.Context) ([]repo.Session, error)
	GetAllExercises(ctx context.Context) ([]repo.Exercise, error)
	ReplaceAll(ctx context.Context, snapshot repo.Snapshot) error
}

// Remote is a snapshot sink that can also hand the snapshot back.
type Remote interface {
	Push(ctx context.Context, snapshot repo.Snapshot) error
	Pull(ctx context.Context) (repo.Snapshot, error)
}

type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

type SyncState interface {
	LastSync(ctx context.Context) (*time.Time, error)
	SetLastSync(ctx context.Context, at time.Time) error
}

type cacheInvalidator interface {
	InvalidateAll()
}
