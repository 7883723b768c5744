package internal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/gymlog/repo"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Store is the opened persistent store. Exactly one of Pool and SqliteDB is set.
type Store struct {
	Repo     repo.Repo
	Pool     *pgxpool.Pool
	SqliteDB *sql.DB
}

type OpenStoreParams struct {
	Config           *config.Config
	PostgresPassword string
	TracingEnabled   bool
}

// OpenStore opens the store selected by the config. Postgres migrations run
// before the pool is handed out.
func OpenStore(ctx context.Context, params OpenStoreParams) (*Store, error) {
	cfg := params.Config
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		poolParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.TracingEnabled,
		}
		if cfg.MigrationsPath != "" {
			if err := db.RunMigrations(poolParams.ConnString(), cfg.MigrationsPath); err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}

		dbPool, err := db.NewDBPool(ctx, poolParams)
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		return &Store{Repo: repo.NewPsqlRepo(dbPool), Pool: dbPool}, nil

	default:
		sqliteDB, err := db.NewSqliteDB(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqliteRepo, err := repo.NewSqliteRepo(ctx, sqliteDB)
		if err != nil {
			_ = sqliteDB.Close()
			return nil, fmt.Errorf("init sqlite repo: %w", err)
		}
		log.Debugf("using sqlite store: %s", cfg.SqlitePath)
		return &Store{Repo: sqliteRepo, SqliteDB: sqliteDB}, nil
	}
}

func (s *Store) Close() error {
	if s.Pool != nil {
		log.Debugln("closing db pool ...")
		s.Pool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	if s.SqliteDB != nil {
		return s.SqliteDB.Close()
	}
	return nil
}
