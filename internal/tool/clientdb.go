package tool

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ClientDatabase manages client records in SQLite.
type ClientDatabase struct {
	db *sql.DB
}

var _ Tool = (*ClientDatabase)(nil)

// NewClientDatabase creates the tool on top of an already migrated database.
func NewClientDatabase(db *sql.DB) *ClientDatabase {
	return &ClientDatabase{db: db}
}

func (c *ClientDatabase) Name() string { return "client_database" }

func (c *ClientDatabase) Description() string {
	return "Manage client information in the database. Can get, add, update, or list clients."
}

func (c *ClientDatabase) InputSchema() string {
	return `{"action": "get|add|update|list", "name": "...", "email": "...", "phone": "...", "notes": "..."}`
}

type clientArgs struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Notes  string `json:"notes"`
}

// Execute runs one database operation and returns a text result.
func (c *ClientDatabase) Execute(ctx context.Context, input string) (string, error) {
	var args clientArgs
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	switch args.Action {
	case "get":
		return c.get(ctx, args)
	case "add":
		return c.add(ctx, args)
	case "update":
		return c.update(ctx, args)
	case "list":
		return c.list(ctx)
	default:
		return "", fmt.Errorf("unknown action: %q", args.Action)
	}
}

func (c *ClientDatabase) get(ctx context.Context, args clientArgs) (string, error) {
	if args.Name == "" {
		return "", errors.New("name is required for 'get' action")
	}

	var name, email, phone, notes string
	err := c.db.QueryRowContext(ctx,
		`SELECT name, email, phone, notes FROM clients WHERE name = ?`, args.Name).
		Scan(&name, &email, &phone, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Sprintf("Client '%s' not found", args.Name), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get client: %w", err)
	}

	return fmt.Sprintf("Client '%s': email=%s phone=%s notes=%s", name, email, phone, notes), nil
}

func (c *ClientDatabase) add(ctx context.Context, args clientArgs) (string, error) {
	if args.Name == "" || args.Email == "" {
		return "", errors.New("name and email are required for 'add' action")
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO clients (name, email, phone, notes) VALUES (?, ?, ?, ?)`,
		args.Name, args.Email, args.Phone, args.Notes)
	if err != nil {
		return "", fmt.Errorf("failed to add client: %w", err)
	}

	return fmt.Sprintf("Client '%s' added successfully", args.Name), nil
}

func (c *ClientDatabase) update(ctx context.Context, args clientArgs) (string, error) {
	if args.Name == "" {
		return "", errors.New("name is required for 'update' action")
	}

	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	params := []interface{}{}
	if args.Email != "" {
		sets = append(sets, "email = ?")
		params = append(params, args.Email)
	}
	if args.Phone != "" {
		sets = append(sets, "phone = ?")
		params = append(params, args.Phone)
	}
	if args.Notes != "" {
		sets = append(sets, "notes = ?")
		params = append(params, args.Notes)
	}
	params = append(params, args.Name)

	res, err := c.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE clients SET %s WHERE name = ?`, strings.Join(sets, ", ")), params...)
	if err != nil {
		return "", fmt.Errorf("failed to update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to update client: %w", err)
	}
	if affected == 0 {
		return fmt.Sprintf("Client '%s' not found", args.Name), nil
	}

	return fmt.Sprintf("Client '%s' updated successfully", args.Name), nil
}

func (c *ClientDatabase) list(ctx context.Context) (string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, email FROM clients ORDER BY name`)
	if err != nil {
		return "", fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	count := 0
	for rows.Next() {
		var name, email string
		if err := rows.Scan(&name, &email); err != nil {
			return "", fmt.Errorf("failed to scan client: %w", err)
		}
		fmt.Fprintf(&b, "- %s <%s>\n", name, email)
		count++
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to list clients: %w", err)
	}
	if count == 0 {
		return "No clients in the database", nil
	}

	return fmt.Sprintf("Found %d clients:\n%s", count, b.String()), nil
}
