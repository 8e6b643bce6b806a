package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lmorand/brasserie-backend/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestMenuMigrationEnforcesSinglePublishedRow(t *testing.T) {
	content := readMigration(t, "*_modernize_weekly_menus.sql")

	checks := []string{
		"ADD COLUMN IF NOT EXISTS metadata JSONB",
		"ADD COLUMN IF NOT EXISTS is_published",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_weekly_menus_one_published",
		"WHERE is_published",
		"DROP INDEX IF EXISTS idx_weekly_menus_one_published",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_users.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CHECK (role IN ('admin', 'staff', 'client'))",
		"DROP TABLE IF EXISTS users",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLockoutColumnsAreAdditive(t *testing.T) {
	content := readMigration(t, "*_add_user_lockout_columns.sql")

	// The auth layer treats these columns as optional, so the migration
	// must never rewrite existing rows.
	if !strings.Contains(content, "ADD COLUMN IF NOT EXISTS failed_login_attempts") {
		t.Errorf("missing failed_login_attempts column")
	}
	if strings.Contains(content, "UPDATE users") {
		t.Errorf("lockout migration must not touch existing rows")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
