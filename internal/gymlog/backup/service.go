package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const (
	kindExport  = "export"
	kindSync    = "sync"
	kindRestore = "restore"
	kindDrive   = "drive"
)

type ServiceParams struct {
	Repo      snapshotRepo
	Exporter  *FileExporter
	Remote    Remote
	Drive     Uploader
	SyncState SyncState
	Cache     cacheInvalidator
	Metrics   *metrics.Manager
	Clock     func() time.Time
}

// Service builds snapshots from the store and moves them between the file
// export, the webhook and Google Drive. Unconfigured sinks are nil.
type Service struct {
	repo      snapshotRepo
	exporter  *FileExporter
	remote    Remote
	drive     Uploader
	syncState SyncState
	cache     cacheInvalidator
	metrics   *metrics.Manager
	clock     func() time.Time
}

func NewService(params ServiceParams) *Service {
	s := &Service{
		repo:      params.Repo,
		exporter:  params.Exporter,
		remote:    params.Remote,
		drive:     params.Drive,
		syncState: params.SyncState,
		cache:     params.Cache,
		metrics:   params.Metrics,
		clock:     params.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

func (s *Service) observe(kind string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.CounterBackups.WithLabelValues(kind, result).Inc()
	s.metrics.HistBackupDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Snapshot reads every session (discarded ones included) and exercise.
func (s *Service) Snapshot(ctx context.Context) (_ repo.Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.snapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := s.repo.GetAllSessions(ctx)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("get sessions: %w", err)
	}
	exercises, err := s.repo.GetAllExercises(ctx)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("get exercises: %w", err)
	}

	for i := range sessions {
		if sessions[i].Labels == nil {
			sessions[i].Labels = []string{}
		}
	}
	if sessions == nil {
		sessions = []repo.Session{}
	}
	if exercises == nil {
		exercises = []repo.Exercise{}
	}

	return repo.Snapshot{
		Version:    repo.SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Sessions:   sessions,
		Exercises:  exercises,
	}, nil
}

// Export writes the snapshot file and returns its path.
func (s *Service) Export(ctx context.Context) (_ string, err error) {
	started := time.Now()
	defer func() {
		s.observe(kindExport, started, err)
	}()

	if s.exporter == nil {
		return "", fmt.Errorf("%w: no export dir", ErrSyncNotConfigured)
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	path, err := s.exporter.Export(snapshot)
	if err != nil {
		return "", err
	}

	log.Infof("exported %d sessions, %d exercises to %s", len(snapshot.Sessions), len(snapshot.Exercises), path)
	return path, nil
}

// Sync pushes the snapshot to the webhook and records the sync time.
func (s *Service) Sync(ctx context.Context) (_ time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.sync")
	started := time.Now()
	defer func() {
		s.observe(kindSync, started, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.remote == nil {
		return time.Time{}, ErrSyncNotConfigured
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.remote.Push(ctx, snapshot); err != nil {
		return time.Time{}, fmt.Errorf("push snapshot: %w", err)
	}

	syncedAt := s.clock().UTC()
	if s.syncState != nil {
		// the push already went through; a lost timestamp is not a failed sync
		if err := s.syncState.SetLastSync(ctx, syncedAt); err != nil {
			log.Errorf("store last sync time: %s", err)
		}
	}

	log.Infof("synced %d sessions, %d exercises", len(snapshot.Sessions), len(snapshot.Exercises))
	return syncedAt, nil
}

func (s *Service) LastSync(ctx context.Context) (*time.Time, error) {
	if s.syncState == nil {
		return nil, ErrSyncNotConfigured
	}
	return s.syncState.LastSync(ctx)
}

// Restore pulls the remote snapshot and replaces the local data with it.
// Nothing is wiped unless the pulled payload is valid.
func (s *Service) Restore(ctx context.Context) (_ repo.Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.restore")
	started := time.Now()
	defer func() {
		s.observe(kindRestore, started, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.remote == nil {
		return repo.Snapshot{}, ErrSyncNotConfigured
	}

	snapshot, err := s.remote.Pull(ctx)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("pull snapshot: %w", err)
	}
	if err := s.replace(ctx, snapshot); err != nil {
		return repo.Snapshot{}, err
	}
	return snapshot, nil
}

// RestoreJSON replaces the local data with an exported snapshot document.
func (s *Service) RestoreJSON(ctx context.Context, data []byte) (_ repo.Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.restore-json")
	started := time.Now()
	defer func() {
		s.observe(kindRestore, started, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	snapshot, err := ParseSnapshot(data)
	if err != nil {
		return repo.Snapshot{}, err
	}
	if err := s.replace(ctx, snapshot); err != nil {
		return repo.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Service) replace(ctx context.Context, snapshot repo.Snapshot) error {
	if err := s.repo.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("replace local data: %w", err)
	}
	if s.cache != nil {
		s.cache.InvalidateAll()
	}
	log.Infof("restored %d sessions, %d exercises", len(snapshot.Sessions), len(snapshot.Exercises))
	return nil
}

// UploadToDrive stores a dated copy of the snapshot on Google Drive.
func (s *Service) UploadToDrive(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "backup.drive")
	started := time.Now()
	defer func() {
		s.observe(kindDrive, started, err)
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.drive == nil {
		return "", fmt.Errorf("%w: no drive credentials", ErrSyncNotConfigured)
	}

	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("gym_backup-%s.json", snapshot.ExportedAt.Format("2006-01-02T150405"))
	return s.drive.Upload(ctx, name, data)
}
