package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	psqlSessionColumns  = `s.id, s.start_time, s.end_time, s.labels, s.note, s.source`
	psqlExerciseColumns = `e.id, e.session_id, e.name, e.sets, e.reps, e.weight_kg, e.rest_seconds, e.start_time, e.end_time, e.note, e.created_at`
)

// PsqlRepo is the server store, used when the service runs against postgres.
type PsqlRepo struct {
	db *pgxpool.Pool
}

func NewPsqlRepo(db *pgxpool.Pool) *PsqlRepo {
	return &PsqlRepo{
		db: db,
	}
}

type pgxExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func (r *PsqlRepo) InsertSession(ctx context.Context, session Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))

	return psqlInsertSession(ctx, r.db, session)
}

func psqlInsertSession(ctx context.Context, ex pgxExecer, session Session) error {
	if err := normalizeSession(&session); err != nil {
		return err
	}
	_, err := ex.Exec(
		ctx,
		`INSERT INTO session (id, start_time, end_time, labels, note, source) VALUES ($1, $2, $3, $4, $5, $6);`,
		session.ID, session.StartTime, session.EndTime, session.Labels, session.Note, string(session.Source),
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PsqlRepo) GetSession(ctx context.Context, id string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	row := r.db.QueryRow(ctx, `SELECT `+psqlSessionColumns+` FROM session s WHERE s.id = $1;`, id)
	session, err := scanPsqlSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *PsqlRepo) GetAllSessions(ctx context.Context) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(ctx, `SELECT `+psqlSessionColumns+` FROM session s ORDER BY s.start_time DESC;`)
}

func (r *PsqlRepo) GetOpenSession(ctx context.Context) (*Session, error) {
	open, err := r.GetOpenSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

func (r *PsqlRepo) GetOpenSessions(ctx context.Context) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(
		ctx,
		`SELECT `+psqlSessionColumns+` FROM session s WHERE s.end_time IS NULL ORDER BY s.start_time DESC;`,
	)
}

func (r *PsqlRepo) GetRecentSessions(ctx context.Context, limit int) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	limit = ClampRecentLimit(limit)
	span.SetAttributes(attribute.Int("limit", limit))

	return r.querySessions(
		ctx,
		`SELECT `+psqlSessionColumns+` FROM session s WHERE s.note != $1 ORDER BY s.start_time DESC LIMIT $2;`,
		DiscardedNote, limit,
	)
}

func (r *PsqlRepo) UpdateSessionOnEnd(
	ctx context.Context,
	id string,
	endTime time.Time,
	note string,
	labels []string,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.end")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	if labels == nil {
		labels = []string{}
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE session SET end_time = $1, note = $2, labels = $3 WHERE id = $4 AND end_time IS NULL;`,
		endTime, note, labels, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetSession(ctx, id); err != nil {
			return err
		}
		return ErrSessionClosed
	}
	return nil
}

func (r *PsqlRepo) DeleteSession(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	// exercises go with it (ON DELETE CASCADE)
	tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PsqlRepo) InsertManualSession(ctx context.Context, session Session, exercises []Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.session.insert-manual")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("exercises", len(exercises)),
	)

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := psqlInsertSession(ctx, tx, session); err != nil {
			return err
		}
		for _, e := range exercises {
			if err := psqlInsertExercise(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PsqlRepo) InsertExercise(ctx context.Context, exercise Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.exercise.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.id", exercise.ID),
		attribute.String("session.id", exercise.SessionID),
	)

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// the row lock holds off a concurrent end until the entry is in
		var endTime *time.Time
		err := tx.QueryRow(
			ctx,
			`SELECT end_time FROM session WHERE id = $1 FOR UPDATE;`,
			exercise.SessionID,
		).Scan(&endTime)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("lock session: %w", err)
		}
		if endTime != nil {
			return ErrSessionClosed
		}
		return psqlInsertExercise(ctx, tx, exercise)
	})
}

func psqlInsertExercise(ctx context.Context, ex pgxExecer, e Exercise) error {
	if err := normalizeExercise(&e); err != nil {
		return err
	}
	_, err := ex.Exec(
		ctx,
		`INSERT INTO session_exercise
			(id, session_id, name, sets, reps, weight_kg, rest_seconds, start_time, end_time, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		e.ID, e.SessionID, e.Name, e.Sets, e.Reps, e.WeightKg, e.RestSeconds,
		e.StartTime, e.EndTime, e.Note, e.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateID
		}
		if pkg.IsForeignKeyViolationError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("insert exercise: %w", err)
	}
	return nil
}

func (r *PsqlRepo) GetExercisesForSession(ctx context.Context, sessionID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.exercise.for-session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sessionID))

	return r.queryExercises(
		ctx,
		`SELECT `+psqlExerciseColumns+` FROM session_exercise e WHERE e.session_id = $1 ORDER BY e.start_time ASC, e.seq ASC;`,
		sessionID,
	)
}

func (r *PsqlRepo) GetAllExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.exercise.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.queryExercises(ctx, `SELECT `+psqlExerciseColumns+` FROM session_exercise e ORDER BY e.created_at ASC, e.seq ASC;`)
}

func (r *PsqlRepo) GetExerciseCountForSession(ctx context.Context, sessionID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.exercise.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(1) FROM session_exercise WHERE session_id = $1;`,
		sessionID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}

func (r *PsqlRepo) GetLatestExerciseByName(ctx context.Context, name string) (_ *LatestExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.exercise.latest-by-name")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	span.SetAttributes(attribute.String("exercise.name", key))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+psqlExerciseColumns+`, s.start_time, s.labels
			FROM session_exercise e
			JOIN session s ON s.id = e.session_id
			WHERE lower(trim(e.name)) = $1
			ORDER BY s.start_time DESC, e.seq DESC
			LIMIT 1;`,
		key,
	)

	var latest LatestExercise
	if err := scanPsqlExercise(row, &latest.Exercise, &latest.SessionStartTime, &latest.SessionLabels); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &latest, nil
}

// ReplaceAll wipes both tables and loads the snapshot, in one transaction.
func (r *PsqlRepo) ReplaceAll(ctx context.Context, snapshot Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.psql.replace-all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("sessions", len(snapshot.Sessions)),
		attribute.Int("exercises", len(snapshot.Exercises)),
	)

	if err := validateSnapshot(snapshot); err != nil {
		return fmt.Errorf("validate snapshot: %w", err)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM session_exercise;`); err != nil {
			return fmt.Errorf("wipe exercises: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM session;`); err != nil {
			return fmt.Errorf("wipe sessions: %w", err)
		}
		for _, s := range snapshot.Sessions {
			if err := psqlInsertSession(ctx, tx, s); err != nil {
				return err
			}
		}
		for _, e := range snapshot.Exercises {
			if err := psqlInsertExercise(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PsqlRepo) querySessions(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		session, err := scanPsqlSession(rows)
		if err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *PsqlRepo) queryExercises(ctx context.Context, query string, args ...any) ([]Exercise, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := scanPsqlExercise(rows, &e); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

func scanPsqlSession(row pgx.Row) (*Session, error) {
	var (
		s      Session
		source string
	)
	if err := row.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Labels, &s.Note, &source); err != nil {
		return nil, err
	}
	if s.Labels == nil {
		s.Labels = []string{}
	}
	s.Source = Source(source)
	return &s, nil
}

func scanPsqlExercise(row pgx.Row, e *Exercise, extra ...any) error {
	dest := []any{
		&e.ID, &e.SessionID, &e.Name, &e.Sets, &e.Reps, &e.WeightKg, &e.RestSeconds,
		&e.StartTime, &e.EndTime, &e.Note, &e.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}
