package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer builds the gymlog MCP server: workout history, session details,
// personal records, last-time lookups, weight trends and the exercise library.
func NewServer(version string, stats statsService, library librarySearcher) *server.MCPServer {
	s := server.NewMCPServer("gymlog", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("GymLog workout data. Query finished sessions, exercise history, personal records and weight trends. Discarded sessions are never returned."),
	)
	s.AddTools(serverTools(NewHandler(stats, library))...)
	return s
}

func serverTools(h *Handler) []server.ServerTool {
	return []server.ServerTool{
		{Tool: toolGetHistory, Handler: h.GetHistory},
		{Tool: toolGetRecentSessions, Handler: h.GetRecentSessions},
		{Tool: toolGetSessionDetails, Handler: h.GetSessionDetails},
		{Tool: toolGetSessionPRs, Handler: h.GetSessionPRs},
		{Tool: toolGetLastTime, Handler: h.GetLastTime},
		{Tool: toolGetTrend, Handler: h.GetTrend},
		{Tool: toolGetExerciseHistory, Handler: h.GetExerciseHistory},
		{Tool: toolSearchLibrary, Handler: h.SearchLibrary},
	}
}

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Lists finished workout sessions, newest first, with exercise count and duration."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions. Defaults to all.")),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("Lists the most recent sessions (1 to 10, default 3)."),
	mcp.WithNumber("limit", mcp.Description("Number of sessions, clamped to 1..10.")),
)

var toolGetSessionDetails = mcp.NewTool("get_session_details",
	mcp.WithDescription("Returns one session with its exercises, aggregates (active time, rest time, average rest) and per-exercise records."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)

var toolGetSessionPRs = mcp.NewTool("get_session_prs",
	mcp.WithDescription("Personal record detection and weight trend for every exercise of a session. A PR is a weight above the previous best for the same exercise and reps."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)

var toolGetLastTime = mcp.NewTool("get_last_time",
	mcp.WithDescription("The most recent entry logged for an exercise name (case-insensitive), with the labels of its session."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name, e.g. Squat")),
)

var toolGetTrend = mcp.NewTool("get_trend",
	mcp.WithDescription("Chronological weight series for one exercise at a fixed rep count, with sparkline points."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Rep count")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Every logged entry of an exercise name (case-insensitive), newest first, with sets, reps, weight, rest seconds and time spent."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name, e.g. Squat")),
)

var toolSearchLibrary = mcp.NewTool("search_library",
	mcp.WithDescription("Searches the exercise library by name, muscle or tag."),
	mcp.WithString("query", mcp.Description("Search text. Empty returns everything.")),
	mcp.WithString("muscle", mcp.Description("Exact primary muscle filter, e.g. Legs")),
)
