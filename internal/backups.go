package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/gymlog/backup"
	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/metrics"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type NewBackupServiceParams struct {
	Config          *config.Config
	Secrets         *config.Secrets
	Repo            repo.Repo
	RedisClient     *redis.Client
	Cache           interface{ InvalidateAll() }
	Metrics         *metrics.Manager
	HttpClient      *http.Client
	DriveEnabled    bool
	DriveClientOpts []option.ClientOption
}

// NewBackupService wires every configured sink. Missing webhook settings
// leave sync and restore disabled; they are not an error.
func NewBackupService(ctx context.Context, params NewBackupServiceParams) (*backup.Service, error) {
	serviceParams := backup.ServiceParams{
		Repo:     params.Repo,
		Exporter: backup.NewFileExporter(params.Config.BackupDir),
		Cache:    params.Cache,
		Metrics:  params.Metrics,
	}
	if params.RedisClient != nil {
		serviceParams.SyncState = backup.NewRedisSyncState(params.RedisClient)
	}

	webhookSecret := ""
	if params.Secrets != nil {
		webhookSecret = params.Secrets.WebhookSecret
	}
	webhook, err := backup.NewWebhookSink(params.Config.WebhookURL, webhookSecret, params.HttpClient)
	switch {
	case errors.Is(err, backup.ErrSyncNotConfigured):
		log.Warnln("webhook url or secret not set, remote sync disabled")
	case err != nil:
		return nil, fmt.Errorf("webhook sink: %w", err)
	default:
		serviceParams.Remote = webhook
	}

	if params.DriveEnabled {
		driveSink, err := backup.NewDriveSink(ctx, backup.DriveSinkParams{
			FolderName: params.Config.DriveBackupsFolderName,
			ShareWith:  params.Config.DriveShareWith,
		}, params.DriveClientOpts...)
		if err != nil {
			return nil, fmt.Errorf("drive sink: %w", err)
		}
		log.Debugf("drive backups folder: %s", driveSink.FolderID())
		serviceParams.Drive = driveSink
	}

	return backup.NewService(serviceParams), nil
}
