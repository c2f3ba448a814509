package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Record(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	err := r.Record(Event{
		Action:   ActionLogin,
		UserID:   42,
		Username: "alice",
	})
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, ActionLogin, event.Action)
	assert.Equal(t, uint(42), event.UserID)
	assert.Equal(t, "alice", event.Username)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Time.IsZero())
}

func TestRecorder_CreatesAuditDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")
	r := NewRecorder(dir)

	require.NoError(t, r.Record(Event{Action: ActionPostDeleted}))

	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestRecorder_FilenameMatchesEventID(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	require.NoError(t, r.Record(Event{Action: ActionRegister, Username: "bob"}))

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, event.ID+".json", filepath.Base(files[0]))
}
