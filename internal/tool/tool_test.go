package tool

import (
	"context"
	"database/sql"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegistryExactMatch(t *testing.T) {
	db := newTestDB(t)
	reg, err := NewRegistry(NewClientDatabase(db), NewCalendar(db))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"calendar", "client_database"}, reg.Names())

	_, ok := reg.Get("client_database")
	assert.True(t, ok)
	_, ok = reg.Get("Client_Database")
	assert.False(t, ok, "lookup must be exact-match")
	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	_, err := NewRegistry(NewClientDatabase(db), NewClientDatabase(db))
	assert.Error(t, err)
}

func TestRegistryDescribeListsAllTools(t *testing.T) {
	db := newTestDB(t)
	reg, err := NewRegistry(NewClientDatabase(db), NewCalendar(db))
	require.NoError(t, err)

	desc := reg.Describe()
	assert.Contains(t, desc, "client_database:")
	assert.Contains(t, desc, "calendar:")
	assert.Contains(t, desc, `"action"`)
}

func TestClientDatabaseCRUD(t *testing.T) {
	db := newTestDB(t)
	cd := NewClientDatabase(db)
	ctx := context.Background()

	out, err := cd.Execute(ctx, `{"action":"list"}`)
	require.NoError(t, err)
	assert.Equal(t, "No clients in the database", out)

	out, err = cd.Execute(ctx, `{"action":"add","name":"Carlos","email":"carlos@miempresa.com","phone":"+54911"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "added successfully")

	out, err = cd.Execute(ctx, `{"action":"get","name":"Carlos"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "carlos@miempresa.com")

	out, err = cd.Execute(ctx, `{"action":"update","name":"Carlos","notes":"cliente frecuente"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "updated successfully")

	out, err = cd.Execute(ctx, `{"action":"get","name":"Carlos"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "cliente frecuente")

	out, err = cd.Execute(ctx, `{"action":"list"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 clients")
}

func TestClientDatabaseUnknownClient(t *testing.T) {
	db := newTestDB(t)
	cd := NewClientDatabase(db)

	out, err := cd.Execute(context.Background(), `{"action":"get","name":"Nadie"}`)
	require.NoError(t, err)
	assert.Equal(t, "Client 'Nadie' not found", out)

	out, err = cd.Execute(context.Background(), `{"action":"update","name":"Nadie","notes":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, "Client 'Nadie' not found", out)
}

func TestClientDatabaseValidation(t *testing.T) {
	db := newTestDB(t)
	cd := NewClientDatabase(db)
	ctx := context.Background()

	_, err := cd.Execute(ctx, `{"action":"get"}`)
	assert.Error(t, err)

	_, err = cd.Execute(ctx, `{"action":"add","name":"Sin Email"}`)
	assert.Error(t, err)

	_, err = cd.Execute(ctx, `{"action":"fly"}`)
	assert.Error(t, err)

	_, err = cd.Execute(ctx, `not json`)
	assert.Error(t, err)
}

func TestCalendarCreateListGet(t *testing.T) {
	db := newTestDB(t)
	cal := NewCalendar(db)
	ctx := context.Background()

	out, err := cal.Execute(ctx, `{"action":"list"}`)
	require.NoError(t, err)
	assert.Equal(t, "No upcoming events", out)

	out, err = cal.Execute(ctx, `{"action":"create","title":"Reunión","start_time":"2026-09-01T15:00:00Z","end_time":"2026-09-01T16:00:00Z"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Event created: Reunión")

	out, err = cal.Execute(ctx, `{"action":"list"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 upcoming events")
	assert.Contains(t, out, "Reunión")

	// Pull the event id out of the list to fetch it.
	idx := strings.Index(out, "ev_")
	require.GreaterOrEqual(t, idx, 0)
	eventID := out[idx : idx+11] // ev_ + 8 hex chars

	out, err = cal.Execute(ctx, `{"action":"get","event_id":"`+eventID+`"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Reunión")
}

func TestCalendarValidation(t *testing.T) {
	db := newTestDB(t)
	cal := NewCalendar(db)
	ctx := context.Background()

	_, err := cal.Execute(ctx, `{"action":"create","title":"Sin horario"}`)
	assert.Error(t, err)

	_, err = cal.Execute(ctx, `{"action":"create","title":"Mal","start_time":"ayer","end_time":"2026-09-01T16:00:00Z"}`)
	assert.Error(t, err)

	_, err = cal.Execute(ctx, `{"action":"create","title":"Invertido","start_time":"2026-09-01T16:00:00Z","end_time":"2026-09-01T15:00:00Z"}`)
	assert.Error(t, err)

	out, err := cal.Execute(ctx, `{"action":"get","event_id":"ev_00000000"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "not found")
}

func TestEmailSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	e := NewEmail(SMTPConfig{
		Host:     "smtp.miempresa.com",
		Port:     587,
		Username: "bot",
		Password: "secreto",
		From:     "bot@miempresa.com",
	})
	e.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	out, err := e.Execute(context.Background(), `{"action":"send","to":"cliente@miempresa.com","subject":"Hola","body":"Gracias por tu consulta"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Email sent successfully")
	assert.Equal(t, "smtp.miempresa.com:587", gotAddr)
	assert.Equal(t, "bot@miempresa.com", gotFrom)
	assert.Equal(t, []string{"cliente@miempresa.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Hola")
	assert.Contains(t, string(gotMsg), "Gracias por tu consulta")
}

func TestEmailValidation(t *testing.T) {
	ctx := context.Background()

	unconfigured := NewEmail(SMTPConfig{})
	_, err := unconfigured.Execute(ctx, `{"action":"send","to":"a@b.com","subject":"Hola"}`)
	assert.Error(t, err)

	e := NewEmail(SMTPConfig{Host: "smtp.miempresa.com", Port: 587, From: "bot@miempresa.com"})
	_, err = e.Execute(ctx, `{"action":"send","subject":"Sin destinatario"}`)
	assert.Error(t, err)

	_, err = e.Execute(ctx, `{"action":"read"}`)
	assert.Error(t, err)

	_, err = e.Execute(ctx, `not json`)
	assert.Error(t, err)
}
