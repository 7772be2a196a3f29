package tool

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Calendar manages business events stored locally in SQLite.
type Calendar struct {
	db *sql.DB
}

var _ Tool = (*Calendar)(nil)

// NewCalendar creates the tool on top of an already migrated database.
func NewCalendar(db *sql.DB) *Calendar {
	return &Calendar{db: db}
}

func (c *Calendar) Name() string { return "calendar" }

func (c *Calendar) Description() string {
	return "Manage calendar events. Can create, list, or get events."
}

func (c *Calendar) InputSchema() string {
	return `{"action": "create|list|get", "title": "...", "start_time": "RFC3339", "end_time": "RFC3339", "event_id": "..."}`
}

type calendarArgs struct {
	Action    string `json:"action"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	EventID   string `json:"event_id"`
}

// Execute runs one calendar operation and returns a text result.
func (c *Calendar) Execute(ctx context.Context, input string) (string, error) {
	var args calendarArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	switch args.Action {
	case "create":
		return c.create(ctx, args)
	case "list":
		return c.list(ctx)
	case "get":
		return c.get(ctx, args)
	default:
		return "", fmt.Errorf("unknown action: %q", args.Action)
	}
}

func (c *Calendar) create(ctx context.Context, args calendarArgs) (string, error) {
	if args.Title == "" || args.StartTime == "" || args.EndTime == "" {
		return "", errors.New("title, start_time and end_time are required for 'create' action")
	}
	start, err := time.Parse(time.RFC3339, args.StartTime)
	if err != nil {
		return "", fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, args.EndTime)
	if err != nil {
		return "", fmt.Errorf("invalid end_time: %w", err)
	}
	if end.Before(start) {
		return "", errors.New("end_time is before start_time")
	}

	eventID := "ev_" + uuid.New().String()[:8]
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO events (event_id, title, start_time, end_time) VALUES (?, ?, ?, ?)`,
		eventID, args.Title, start.UTC(), end.UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	return fmt.Sprintf("Event created: %s (%s)", args.Title, eventID), nil
}

func (c *Calendar) list(ctx context.Context) (string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT event_id, title, start_time FROM events ORDER BY start_time LIMIT 10`)
	if err != nil {
		return "", fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	count := 0
	for rows.Next() {
		var eventID, title string
		var start time.Time
		if err := rows.Scan(&eventID, &title, &start); err != nil {
			return "", fmt.Errorf("failed to scan event: %w", err)
		}
		fmt.Fprintf(&b, "- %s: %s at %s\n", eventID, title, start.Format(time.RFC3339))
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to list events: %w", err)
	}
	if count == 0 {
		return "No upcoming events", nil
	}

	return fmt.Sprintf("Found %d upcoming events:\n%s", count, b.String()), nil
}

func (c *Calendar) get(ctx context.Context, args calendarArgs) (string, error) {
	if args.EventID == "" {
		return "", errors.New("event_id is required for 'get' action")
	}

	var title string
	var start, end time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT title, start_time, end_time FROM events WHERE event_id = ?`, args.EventID).
		Scan(&title, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("Event '%s' not found", args.EventID), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get event: %w", err)
	}

	return fmt.Sprintf("Event: %s from %s to %s", title, start.Format(time.RFC3339), end.Format(time.RFC3339)), nil
}
