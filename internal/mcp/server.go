// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task list as read-only MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Server wraps the todo services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	taskMgr     core.TaskManager
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given task manager.
// metricsCalc and alertEngine may be nil if the event log is disabled.
func NewServer(taskMgr core.TaskManager, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		taskMgr:     taskMgr,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "todo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	DueDate  string `json:"due_date"`
	Overdue  bool   `json:"overdue"`
	Color    string `json:"color"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"which tasks to list: all, incomplete or completed. Defaults to all."`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type searchTasksInput struct {
	Term string `json:"term" jsonschema:"required,case-insensitive substring to look for in task names"`
}

type getTaskInput struct {
	Position int `json:"position" jsonschema:"required,1-based position of the task in the active list"`
}

type getStatisticsInput struct{}

type statisticsOutput struct {
	ActiveCount    int      `json:"active_count"`
	CompletedCount int      `json:"completed_count"`
	TotalCount     int      `json:"total_count"`
	UrgentCount    int      `json:"urgent_count"`
	OverdueCount   int      `json:"overdue_count"`
	CompletionRate *float64 `json:"completion_rate,omitempty"`
}

type listArchivedInput struct{}

type archivedOutput struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	DueDate        string `json:"due_date"`
	CompletionDate string `json:"completion_date"`
}

type listArchivedOutput struct {
	Tasks []archivedOutput `json:"tasks"`
	Count int              `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksAdded         int            `json:"tasks_added"`
	TasksEdited        int            `json:"tasks_edited"`
	TasksDeleted       int            `json:"tasks_deleted"`
	TasksCompleted     int            `json:"tasks_completed"`
	CompletedLate      int            `json:"completed_late"`
	TasksArchived      int            `json:"tasks_archived"`
	CompletedByUrgency map[string]int `json:"completed_by_urgency"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List active tasks sorted by due date then urgency. Filter is all, incomplete or completed.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get one active task by its 1-based position in the unsorted list.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_tasks",
		Description: "Find active tasks whose name contains the term, ignoring case. Results are sorted.",
	}, s.handleSearchTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_statistics",
		Description: "Get active, completed, urgent and overdue counts plus the completion rate.",
	}, s.handleGetStatistics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_archived",
		Description: "List completed tasks from the archive with their completion dates.",
	}, s.handleListArchived)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get activity counts from the event log: tasks added, edited, deleted, completed and archived.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue tasks, too many urgent tasks, no recent completions, list size).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	all := s.taskMgr.Sorted()

	var tasks []models.Task
	switch input.Filter {
	case "", "all":
		tasks = all
	case "incomplete":
		tasks = core.FilterIncomplete(all)
	case "completed":
		tasks = core.FilterCompleted(all)
	default:
		return errorResult(fmt.Sprintf("invalid filter %q: must be one of all, incomplete, completed", input.Filter)), listTasksOutput{}, nil
	}

	return nil, s.listOutput(tasks), nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	tasks := s.taskMgr.Tasks()
	if input.Position < 1 || input.Position > len(tasks) {
		return errorResult(fmt.Sprintf("position %d is not between 1 and %d", input.Position, len(tasks))), taskOutput{}, nil
	}

	view := core.View(tasks[input.Position-1:input.Position], s.taskMgr.Now())[0]
	return nil, viewToOutput(input.Position, view), nil
}

func (s *Server) handleSearchTasks(_ context.Context, _ *gomcp.CallToolRequest, input searchTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	if input.Term == "" {
		return errorResult("term is required"), listTasksOutput{}, nil
	}
	return nil, s.listOutput(s.taskMgr.Search(input.Term)), nil
}

func (s *Server) handleGetStatistics(_ context.Context, _ *gomcp.CallToolRequest, _ getStatisticsInput) (*gomcp.CallToolResult, statisticsOutput, error) {
	stats, err := s.taskMgr.Statistics()
	if err != nil {
		return errorResult(fmt.Sprintf("computing statistics: %s", err)), statisticsOutput{}, nil
	}

	return nil, statisticsOutput{
		ActiveCount:    stats.ActiveCount,
		CompletedCount: stats.CompletedCount,
		TotalCount:     stats.TotalCount,
		UrgentCount:    stats.UrgentCount,
		OverdueCount:   stats.OverdueCount,
		CompletionRate: stats.CompletionRate,
	}, nil
}

func (s *Server) handleListArchived(_ context.Context, _ *gomcp.CallToolRequest, _ listArchivedInput) (*gomcp.CallToolResult, listArchivedOutput, error) {
	entries, err := s.taskMgr.Archived()
	if err != nil {
		return errorResult(fmt.Sprintf("listing archived tasks: %s", err)), listArchivedOutput{}, nil
	}

	out := listArchivedOutput{
		Tasks: make([]archivedOutput, len(entries)),
		Count: len(entries),
	}
	for i, e := range entries {
		out.Tasks[i] = archivedOutput{
			Name:           e.Name,
			Status:         string(e.Status),
			DueDate:        e.DueDate,
			CompletionDate: e.CompletionDate,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksAdded:         metrics.TasksAdded,
		TasksEdited:        metrics.TasksEdited,
		TasksDeleted:       metrics.TasksDeleted,
		TasksCompleted:     metrics.TasksCompleted,
		CompletedLate:      metrics.CompletedLate,
		TasksArchived:      metrics.TasksArchived,
		CompletedByUrgency: metrics.CompletedByUrgency,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// listOutput renders tasks in the given order, numbering them from 1.
func (s *Server) listOutput(tasks []models.Task) listTasksOutput {
	views := core.View(tasks, s.taskMgr.Now())
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(views)),
		Count: len(views),
	}
	for i, v := range views {
		out.Tasks[i] = viewToOutput(i+1, v)
	}
	return out
}

func viewToOutput(position int, v core.TaskView) taskOutput {
	return taskOutput{
		Position: position,
		Name:     v.Task.Name,
		Status:   string(v.Task.Status),
		DueDate:  v.Task.DueDate,
		Overdue:  v.Overdue,
		Color:    v.Color.String(),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		CompletedByUrgency: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// ParseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time before now.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
