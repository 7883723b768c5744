package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/2beens/gymlog/internal"
	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/gymlog/backup"
	"github.com/2beens/gymlog/internal/gymlog/stats"
	"github.com/2beens/gymlog/internal/logging"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	actionExport      = "export"
	actionSync        = "sync"
	actionRestore     = "restore"
	actionRestoreFile = "restore-file"
	actionDrive       = "drive"
	actionLastSync    = "last-sync"
	actionVerify      = "verify"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	action := flag.String("action", actionExport, "one of: export, sync, restore, restore-file, verify, drive, last-sync")
	file := flag.String("file", "", "snapshot file for restore-file and verify")
	logsPath := flag.String("logs-path", "", "logs file path (empty for stdout)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		Component:   "backups",
		LogFileName: *logsPath,
		LogToStdout: true,
		LogLevel:    "info",
	})

	err := run(*env, *configPath, *action, *file, *timeout)
	closeLogs()
	if err != nil {
		log.Errorf("%s failed: %s", *action, err)
		os.Exit(1)
	}
}

func run(env, configPath, action, file string, timeout time.Duration) error {
	if action == actionVerify {
		if file == "" {
			return fmt.Errorf("-file is required for %s", actionVerify)
		}
		snapshot, err := backup.ReadSnapshotFile(file)
		if err != nil {
			return err
		}
		log.Infof("%s is valid: %d sessions, %d exercises", file, len(snapshot.Sessions), len(snapshot.Exercises))
		return nil
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		return err
	}

	store, err := internal.OpenStore(ctx, internal.OpenStoreParams{
		Config:           cfg,
		PostgresPassword: secrets.PostgresPassword,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorf("close store: %s", err)
		}
	}()

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
	})
	defer rdb.Close()

	backupParams := internal.NewBackupServiceParams{
		Config:      cfg,
		Secrets:     secrets,
		Repo:        store.Repo,
		RedisClient: rdb,
		Cache:       stats.NewService(store.Repo, nil, time.Now),
	}
	if action == actionDrive {
		if secrets.DriveCredentials == "" {
			return fmt.Errorf("drive credentials not set, use GYMLOG_DRIVE_CREDENTIALS_FILE")
		}
		backupParams.DriveEnabled = true
		backupParams.DriveClientOpts = []option.ClientOption{option.WithCredentialsFile(secrets.DriveCredentials)}
	}

	service, err := internal.NewBackupService(ctx, backupParams)
	if err != nil {
		return err
	}

	switch action {
	case actionExport:
		path, err := service.Export(ctx)
		if err != nil {
			return err
		}
		log.Infof("snapshot written to %s", path)
	case actionSync:
		at, err := service.Sync(ctx)
		if err != nil {
			return err
		}
		log.Infof("synced at %s", at.Format(time.RFC3339))
	case actionRestore:
		snapshot, err := service.Restore(ctx)
		if err != nil {
			return err
		}
		log.Infof("restored %d sessions, %d exercises from remote", len(snapshot.Sessions), len(snapshot.Exercises))
	case actionRestoreFile:
		if file == "" {
			return fmt.Errorf("-file is required for %s", actionRestoreFile)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read snapshot file: %w", err)
		}
		snapshot, err := service.RestoreJSON(ctx, data)
		if err != nil {
			return err
		}
		log.Infof("restored %d sessions, %d exercises from %s", len(snapshot.Sessions), len(snapshot.Exercises), file)
	case actionDrive:
		fileID, err := service.UploadToDrive(ctx)
		if err != nil {
			return err
		}
		log.Infof("uploaded to drive, file id %s", fileID)
	case actionLastSync:
		lastSync, err := service.LastSync(ctx)
		if err != nil {
			return err
		}
		if lastSync == nil {
			log.Infoln("never synced")
		} else {
			log.Infof("last sync: %s", lastSync.Format(time.RFC3339))
		}
	default:
		return fmt.Errorf("unknown action: %s", action)
	}

	return nil
}
