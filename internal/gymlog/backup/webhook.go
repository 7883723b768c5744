package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

const maxWebhookResponseBytes = 32 << 20

type webhookSession struct {
	ID            string   `json:"id"`
	StartTime     string   `json:"start_time"`
	EndTime       *string  `json:"end_time"`
	DurationMin   any      `json:"duration_min"`
	SessionLabels []string `json:"sessionLabels"`
	Source        string   `json:"source"`
	Note          string   `json:"note"`
}

type webhookExercise struct {
	ID          string  `json:"id"`
	SessionID   string  `json:"session_id"`
	CreatedAt   string  `json:"created_at"`
	Name        string  `json:"name"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	WeightKg    float64 `json:"weight_kg"`
	Note        string  `json:"note"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	RestSeconds int     `json:"rest_seconds,omitempty"`
}

type webhookPushRequest struct {
	Secret    string            `json:"secret"`
	Sessions  []webhookSession  `json:"sessions"`
	Exercises []webhookExercise `json:"exercises"`
}

type webhookResponse struct {
	Ok  bool   `json:"ok"`
	Msg string `json:"msg"`
}

type webhookExportResponse struct {
	webhookResponse
	Sessions  []webhookSession  `json:"sessions"`
	Exercises []webhookExercise `json:"exercises"`
}

// WebhookSink talks to the spreadsheet webhook: a JSON POST pushes the
// whole snapshot, a GET with action=export reads it back. Both carry the
// shared secret.
type WebhookSink struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewWebhookSink(webhookURL, secret string, httpClient *http.Client) (*WebhookSink, error) {
	if webhookURL == "" || secret == "" {
		return nil, ErrSyncNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &WebhookSink{
		url:        webhookURL,
		secret:     secret,
		httpClient: httpClient,
	}, nil
}

func (s *WebhookSink) Push(ctx context.Context, snapshot repo.Snapshot) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "webhook.push")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("sessions", len(snapshot.Sessions)),
		attribute.Int("exercises", len(snapshot.Exercises)),
	)

	payload := webhookPushRequest{
		Secret:    s.secret,
		Sessions:  make([]webhookSession, 0, len(snapshot.Sessions)),
		Exercises: make([]webhookExercise, 0, len(snapshot.Exercises)),
	}
	for _, session := range snapshot.Sessions {
		payload.Sessions = append(payload.Sessions, toWebhookSession(session))
	}
	for _, exercise := range snapshot.Exercises {
		payload.Exercises = append(payload.Exercises, toWebhookExercise(exercise))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := s.do(req)
	if err != nil {
		return err
	}

	var resp webhookResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("%w: unreadable response: %s", ErrRemoteRejected, err)
	}
	if !resp.Ok {
		return rejected(resp.Msg, "sync failed")
	}

	log.Debugf("webhook push ok: %d sessions, %d exercises", len(payload.Sessions), len(payload.Exercises))
	return nil
}

func (s *WebhookSink) Pull(ctx context.Context) (_ repo.Snapshot, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "webhook.pull")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	pullURL, err := url.Parse(s.url)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("parse webhook url: %w", err)
	}
	query := pullURL.Query()
	query.Set("action", "export")
	query.Set("secret", s.secret)
	pullURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pullURL.String(), nil)
	if err != nil {
		return repo.Snapshot{}, fmt.Errorf("create request: %w", err)
	}

	respBody, err := s.do(req)
	if err != nil {
		return repo.Snapshot{}, err
	}

	var status webhookResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return repo.Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	if !status.Ok {
		return repo.Snapshot{}, rejected(status.Msg, "export failed")
	}

	if err := validate(webhookSchema, respBody); err != nil {
		return repo.Snapshot{}, err
	}

	var exported webhookExportResponse
	if err := json.Unmarshal(respBody, &exported); err != nil {
		return repo.Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}

	snapshot, err := exported.snapshot()
	if err != nil {
		return repo.Snapshot{}, err
	}
	span.SetAttributes(
		attribute.Int("sessions", len(snapshot.Sessions)),
		attribute.Int("exercises", len(snapshot.Exercises)),
	)
	return snapshot, nil
}

func (s *WebhookSink) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}
	return body, nil
}

func rejected(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return fmt.Errorf("%w: %s", ErrRemoteRejected, msg)
}

func toWebhookSession(s repo.Session) webhookSession {
	ws := webhookSession{
		ID:            s.ID,
		StartTime:     s.StartTime.UTC().Format(time.RFC3339Nano),
		SessionLabels: s.Labels,
		Source:        string(s.Source),
		Note:          s.Note,
	}
	if ws.SessionLabels == nil {
		ws.SessionLabels = []string{}
	}
	if s.EndTime != nil {
		end := s.EndTime.UTC().Format(time.RFC3339Nano)
		minutes := int(s.EndTime.Sub(s.StartTime).Round(time.Minute) / time.Minute)
		ws.EndTime = &end
		ws.DurationMin = minutes
	}
	return ws
}

func toWebhookExercise(e repo.Exercise) webhookExercise {
	return webhookExercise{
		ID:          e.ID,
		SessionID:   e.SessionID,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339Nano),
		Name:        e.Name,
		Sets:        e.Sets,
		Reps:        e.Reps,
		WeightKg:    e.WeightKg,
		Note:        e.Note,
		StartTime:   e.StartTime.UTC().Format(time.RFC3339Nano),
		EndTime:     e.EndTime.UTC().Format(time.RFC3339Nano),
		RestSeconds: e.RestSeconds,
	}
}

func (r webhookExportResponse) snapshot() (repo.Snapshot, error) {
	snapshot := repo.Snapshot{
		Version:   repo.SnapshotVersion,
		Sessions:  make([]repo.Session, 0, len(r.Sessions)),
		Exercises: make([]repo.Exercise, 0, len(r.Exercises)),
	}

	for _, ws := range r.Sessions {
		start, err := time.Parse(time.RFC3339Nano, ws.StartTime)
		if err != nil {
			return repo.Snapshot{}, fmt.Errorf("%w: session %s start: %s", ErrInvalidSnapshot, ws.ID, err)
		}
		session := repo.Session{
			ID:        ws.ID,
			StartTime: start,
			Labels:    ws.SessionLabels,
			Note:      ws.Note,
			Source:    repo.Source(ws.Source),
		}
		if session.Labels == nil {
			session.Labels = []string{}
		}
		if session.Source == "" {
			session.Source = repo.SourceLive
		}
		if ws.EndTime != nil && strings.TrimSpace(*ws.EndTime) != "" {
			end, err := time.Parse(time.RFC3339Nano, *ws.EndTime)
			if err != nil {
				return repo.Snapshot{}, fmt.Errorf("%w: session %s end: %s", ErrInvalidSnapshot, ws.ID, err)
			}
			session.EndTime = &end
		}
		snapshot.Sessions = append(snapshot.Sessions, session)
	}

	for _, we := range r.Exercises {
		createdAt, err := time.Parse(time.RFC3339Nano, we.CreatedAt)
		if err != nil {
			return repo.Snapshot{}, fmt.Errorf("%w: exercise %s created_at: %s", ErrInvalidSnapshot, we.ID, err)
		}
		exercise := repo.Exercise{
			ID:          we.ID,
			SessionID:   we.SessionID,
			Name:        we.Name,
			Sets:        we.Sets,
			Reps:        we.Reps,
			WeightKg:    we.WeightKg,
			RestSeconds: we.RestSeconds,
			StartTime:   createdAt,
			EndTime:     createdAt,
			Note:        we.Note,
			CreatedAt:   createdAt,
		}
		// rows written by older clients only carry created_at
		if t, err := time.Parse(time.RFC3339Nano, we.StartTime); err == nil {
			exercise.StartTime = t
		}
		if t, err := time.Parse(time.RFC3339Nano, we.EndTime); err == nil {
			exercise.EndTime = t
		}
		snapshot.Exercises = append(snapshot.Exercises, exercise)
	}

	return snapshot, nil
}
