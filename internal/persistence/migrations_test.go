package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "..", "migrations", name))
	require.NoError(t, err)
	return string(content)
}

// Accounts may be served from MySQL, so Postgres tables must not reference users.
func TestSchedulingTablesDoNotReferenceUsers(t *testing.T) {
	for _, name := range []string{"002_courses.sql", "003_appointments.sql"} {
		t.Run(name, func(t *testing.T) {
			assert.NotContains(t, strings.ToLower(readMigration(t, name)), "references users")
		})
	}
}

func TestAppointmentsExcludeTutorOverlap(t *testing.T) {
	schema := readMigration(t, "003_appointments.sql")
	assert.Contains(t, schema, "CREATE EXTENSION IF NOT EXISTS btree_gist")
	assert.Contains(t, schema, "EXCLUDE USING gist (tutor_id WITH =, tstzrange(starts_at, ends_at) WITH &&)")
	assert.Contains(t, schema, "WHERE (status = 'scheduled')")
}
