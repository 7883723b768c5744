package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"go.opentelemetry.io/otel/attribute"
)

// fixed width, so that text ordering equals time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	sqliteSessionColumns  = `s.id, s.start_time, s.end_time, s.labels, s.note, s.source`
	sqliteExerciseColumns = `e.id, e.session_id, e.name, e.sets, e.reps, e.weight_kg, e.rest_seconds, e.start_time, e.end_time, e.note, e.created_at`
)

// SqliteRepo is the embedded store, backed by modernc.org/sqlite.
type SqliteRepo struct {
	db *sql.DB
}

// NewSqliteRepo wraps an open sqlite handle and makes sure the schema is current.
func NewSqliteRepo(ctx context.Context, db *sql.DB) (*SqliteRepo, error) {
	if err := initSqliteSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SqliteRepo{
		db: db,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func (r *SqliteRepo) InsertSession(ctx context.Context, session Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))

	return sqliteInsertSession(ctx, r.db, session)
}

func sqliteInsertSession(ctx context.Context, ex sqlExecer, session Session) error {
	if err := normalizeSession(&session); err != nil {
		return err
	}

	labelsJson, err := json.Marshal(session.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	var endTime sql.NullString
	if session.EndTime != nil {
		endTime = sql.NullString{String: formatTime(*session.EndTime), Valid: true}
	}

	_, err = ex.ExecContext(
		ctx,
		`INSERT INTO sessions (id, start_time, end_time, labels, note, source) VALUES (?, ?, ?, ?, ?, ?);`,
		session.ID, formatTime(session.StartTime), endTime, string(labelsJson), session.Note, string(session.Source),
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SqliteRepo) GetSession(ctx context.Context, id string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteSessionColumns+` FROM sessions s WHERE s.id = ?;`, id)
	session, err := scanSqliteSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *SqliteRepo) GetAllSessions(ctx context.Context) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(ctx, `SELECT `+sqliteSessionColumns+` FROM sessions s ORDER BY s.start_time DESC;`)
}

func (r *SqliteRepo) GetOpenSession(ctx context.Context) (*Session, error) {
	open, err := r.GetOpenSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	return &open[0], nil
}

func (r *SqliteRepo) GetOpenSessions(ctx context.Context) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(
		ctx,
		`SELECT `+sqliteSessionColumns+` FROM sessions s WHERE s.end_time IS NULL ORDER BY s.start_time DESC;`,
	)
}

func (r *SqliteRepo) GetRecentSessions(ctx context.Context, limit int) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	limit = ClampRecentLimit(limit)
	span.SetAttributes(attribute.Int("limit", limit))

	return r.querySessions(
		ctx,
		`SELECT `+sqliteSessionColumns+` FROM sessions s WHERE s.note != ? ORDER BY s.start_time DESC LIMIT ?;`,
		DiscardedNote, limit,
	)
}

func (r *SqliteRepo) UpdateSessionOnEnd(
	ctx context.Context,
	id string,
	endTime time.Time,
	note string,
	labels []string,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.end")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	if labels == nil {
		labels = []string{}
	}
	labelsJson, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}

	// single statement: end time, note and labels land together or not at all
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE sessions SET end_time = ?, note = ?, labels = ? WHERE id = ? AND end_time IS NULL;`,
		formatTime(endTime), note, string(labelsJson), id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetSession(ctx, id); err != nil {
			return err
		}
		return ErrSessionClosed
	}
	return nil
}

func (r *SqliteRepo) DeleteSession(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM exercises WHERE session_id = ?;`, id); err != nil {
		return fmt.Errorf("delete exercises: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = ErrSessionNotFound
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepo) InsertManualSession(ctx context.Context, session Session, exercises []Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.session.insert-manual")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("exercises", len(exercises)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = sqliteInsertSession(ctx, tx, session); err != nil {
		return err
	}
	for _, e := range exercises {
		if err = sqliteInsertExercise(ctx, tx, e); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SqliteRepo) InsertExercise(ctx context.Context, exercise Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.exercise.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.id", exercise.ID),
		attribute.String("session.id", exercise.SessionID),
	)

	if err := normalizeExercise(&exercise); err != nil {
		return err
	}

	// live inserts only land in a session that is still open
	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO exercises
			(id, session_id, name, sets, reps, weight_kg, rest_seconds, start_time, end_time, note, created_at)
			SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM sessions WHERE id = ? AND end_time IS NULL);`,
		exercise.ID, exercise.SessionID, exercise.Name, exercise.Sets, exercise.Reps, exercise.WeightKg, exercise.RestSeconds,
		formatTime(exercise.StartTime), formatTime(exercise.EndTime), exercise.Note, formatTime(exercise.CreatedAt),
		exercise.SessionID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert exercise: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetSession(ctx, exercise.SessionID); err != nil {
			return err
		}
		return ErrSessionClosed
	}
	return nil
}

func sqliteInsertExercise(ctx context.Context, ex sqlExecer, e Exercise) error {
	if err := normalizeExercise(&e); err != nil {
		return err
	}

	_, err := ex.ExecContext(
		ctx,
		`INSERT INTO exercises
			(id, session_id, name, sets, reps, weight_kg, rest_seconds, start_time, end_time, note, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		e.ID, e.SessionID, e.Name, e.Sets, e.Reps, e.WeightKg, e.RestSeconds,
		formatTime(e.StartTime), formatTime(e.EndTime), e.Note, formatTime(e.CreatedAt),
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

func (r *SqliteRepo) GetExercisesForSession(ctx context.Context, sessionID string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.exercise.for-session")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", sessionID))

	return r.queryExercises(
		ctx,
		`SELECT `+sqliteExerciseColumns+` FROM exercises e WHERE e.session_id = ? ORDER BY e.start_time ASC, e.created_at ASC, e.rowid ASC;`,
		sessionID,
	)
}

func (r *SqliteRepo) GetAllExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.exercise.all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.queryExercises(
		ctx,
		`SELECT `+sqliteExerciseColumns+` FROM exercises e ORDER BY e.created_at ASC, e.rowid ASC;`,
	)
}

func (r *SqliteRepo) GetExerciseCountForSession(ctx context.Context, sessionID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.exercise.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM exercises WHERE session_id = ?;`,
		sessionID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count exercises: %w", err)
	}
	return count, nil
}

func (r *SqliteRepo) GetLatestExerciseByName(ctx context.Context, name string) (_ *LatestExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.exercise.latest-by-name")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	span.SetAttributes(attribute.String("exercise.name", key))

	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sqliteExerciseColumns+`, s.start_time, s.labels
			FROM exercises e
			JOIN sessions s ON s.id = e.session_id
			WHERE lower(trim(e.name)) = ?
			ORDER BY s.start_time DESC, e.rowid DESC
			LIMIT 1;`,
		key,
	)

	var (
		latest           LatestExercise
		sessionStartTime string
		sessionLabels    string
	)
	if err := scanSqliteExercise(row, &latest.Exercise, &sessionStartTime, &sessionLabels); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if latest.SessionStartTime, err = parseTime(sessionStartTime); err != nil {
		return nil, fmt.Errorf("parse session start time: %w", err)
	}
	if err := json.Unmarshal([]byte(sessionLabels), &latest.SessionLabels); err != nil {
		return nil, fmt.Errorf("unmarshal session labels: %w", err)
	}

	return &latest, nil
}

// ReplaceAll wipes both tables and loads the snapshot, in one transaction.
func (r *SqliteRepo) ReplaceAll(ctx context.Context, snapshot Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sqlite.replace-all")
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM exercises;`); err != nil {
		return fmt.Errorf("wipe exercises: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions;`); err != nil {
		return fmt.Errorf("wipe sessions: %w", err)
	}
	for _, s := range snapshot.Sessions {
		if err = sqliteInsertSession(ctx, tx, s); err != nil {
			return err
		}
	}
	for _, e := range snapshot.Exercises {
		if err = sqliteInsertExercise(ctx, tx, e); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SqliteRepo) querySessions(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		session, err := scanSqliteSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return sessions, nil
}

func (r *SqliteRepo) queryExercises(ctx context.Context, query string, args ...any) ([]Exercise, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := scanSqliteExercise(rows, &e); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return exercises, nil
}

func scanSqliteSession(row rowScanner) (*Session, error) {
	var (
		s          Session
		startTime  string
		endTime    sql.NullString
		labelsJson string
		source     string
	)
	if err := row.Scan(&s.ID, &startTime, &endTime, &labelsJson, &s.Note, &source); err != nil {
		return nil, err
	}

	var err error
	if s.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	if endTime.Valid {
		end, err := parseTime(endTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse end time: %w", err)
		}
		s.EndTime = &end
	}
	if err := json.Unmarshal([]byte(labelsJson), &s.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	if s.Labels == nil {
		s.Labels = []string{}
	}
	s.Source = Source(source)

	return &s, nil
}

func scanSqliteExercise(row rowScanner, e *Exercise, extra ...any) error {
	var startTime, endTime, createdAt string
	dest := []any{
		&e.ID, &e.SessionID, &e.Name, &e.Sets, &e.Reps, &e.WeightKg, &e.RestSeconds,
		&startTime, &endTime, &e.Note, &createdAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	var err error
	if e.StartTime, err = parseTime(startTime); err != nil {
		return fmt.Errorf("parse exercise start time: %w", err)
	}
	if e.EndTime, err = parseTime(endTime); err != nil {
		return fmt.Errorf("parse exercise end time: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("parse exercise created at: %w", err)
	}
	return nil
}
