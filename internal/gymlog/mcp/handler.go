package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/labels"
	"github.com/2beens/gymlog/internal/gymlog/repo"
	"github.com/2beens/gymlog/internal/gymlog/stats"

	"github.com/mark3labs/mcp-go/mcp"
	log "github.com/sirupsen/logrus"
)

type statsService interface {
	History(ctx context.Context, limit int) ([]repo.SessionSummary, error)
	Recent(ctx context.Context, limit int) ([]repo.SessionSummary, error)
	SessionDetails(ctx context.Context, sessionID string) (*stats.SessionDetails, error)
	SessionPRs(ctx context.Context, sessionID string) ([]stats.ExerciseRecord, error)
	LastTime(ctx context.Context, name string) (*repo.LatestExercise, error)
	TrendFor(ctx context.Context, name string, reps int) (*stats.TrendSeries, error)
	ExerciseHistory(ctx context.Context, name string) ([]stats.HistoryEntry, error)
}

type librarySearcher interface {
	Search(query, muscle string) []labels.Exercise
}

// Handler turns MCP tool calls into stats queries. All tools are read only.
type Handler struct {
	stats   statsService
	library librarySearcher
}

func NewHandler(stats statsService, library librarySearcher) *Handler {
	return &Handler{
		stats:   stats,
		library: library,
	}
}

func jsonResult(tool string, v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		log.Errorf("mcp %s: marshal result: %s", tool, err)
		return mcp.NewToolResultError("failed to encode result"), nil
	}
	return result, nil
}

func (h *Handler) GetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := h.stats.History(ctx, req.GetInt("limit", 0))
	if err != nil {
		log.Errorf("mcp get_history: %s", err)
		return mcp.NewToolResultError("Error fetching history: " + err.Error()), nil
	}
	return jsonResult("get_history", history)
}

func (h *Handler) GetRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recent, err := h.stats.Recent(ctx, req.GetInt("limit", 0))
	if err != nil {
		log.Errorf("mcp get_recent_sessions: %s", err)
		return mcp.NewToolResultError("Error fetching recent sessions: " + err.Error()), nil
	}
	return jsonResult("get_recent_sessions", recent)
}

func (h *Handler) GetSessionDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	details, err := h.stats.SessionDetails(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error fetching session %s: %s", sessionID, err)), nil
	}
	return jsonResult("get_session_details", details)
}

func (h *Handler) GetSessionPRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	records, err := h.stats.SessionPRs(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error fetching records for %s: %s", sessionID, err)), nil
	}
	return jsonResult("get_session_prs", records)
}

func (h *Handler) GetLastTime(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	latest, err := h.stats.LastTime(ctx, name)
	if err != nil {
		return mcp.NewToolResultError("Error fetching last time: " + err.Error()), nil
	}
	if latest == nil {
		return mcp.NewToolResultText(fmt.Sprintf("%s has never been logged.", name)), nil
	}
	return jsonResult("get_last_time", latest)
}

func (h *Handler) GetTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	reps := req.GetInt("reps", 0)
	if reps <= 0 {
		return mcp.NewToolResultError("reps must be a positive number"), nil
	}

	trend, err := h.stats.TrendFor(ctx, name, reps)
	if err != nil {
		return mcp.NewToolResultError("Error fetching trend: " + err.Error()), nil
	}
	return jsonResult("get_trend", trend)
}

func (h *Handler) GetExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	entries, err := h.stats.ExerciseHistory(ctx, name)
	if err != nil {
		log.Errorf("mcp get_exercise_history: %s", err)
		return mcp.NewToolResultError("Error fetching exercise history: " + err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%s has never been logged.", name)), nil
	}
	return jsonResult("get_exercise_history", entries)
}

func (h *Handler) SearchLibrary(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	found := h.library.Search(req.GetString("query", ""), req.GetString("muscle", ""))
	return jsonResult("search_library", found)
}
