package menus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmorand/brasserie-backend/pkg/db/schema"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
)

const modernMenusDDL = `
CREATE TABLE IF NOT EXISTS weekly_menus (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  week_number INTEGER NOT NULL DEFAULT 0,
  week_year INTEGER NOT NULL DEFAULT 0,
  metadata TEXT,
  is_published INTEGER NOT NULL DEFAULT 0,
  menu_data TEXT,
  is_active INTEGER NOT NULL DEFAULT 0,
  week_start_date DATETIME,
  week_end_date DATETIME,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`

const legacyMenusDDL = `
CREATE TABLE IF NOT EXISTS weekly_menus (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  week_number INTEGER NOT NULL DEFAULT 0,
  week_year INTEGER NOT NULL DEFAULT 0,
  menu_data TEXT,
  is_active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

const brokenMenusDDL = `
CREATE TABLE IF NOT EXISTS weekly_menus (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  created_at DATETIME
);`

func setupMenusTestDB(t *testing.T, name, ddl string) *Repository {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, gdb.Exec(ddl).Error)
	t.Cleanup(func() { gdb.Exec("DROP TABLE IF EXISTS weekly_menus") })

	return NewRepository(gdb, schema.NewFromGorm(gdb))
}

func samplePublishInput(author uuid.UUID) PublishInput {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return PublishInput{
		PayloadJSON:   `{"LUNDI":[{"name":"Entrées","items":[{"name":"Soupe à l'oignon"}]}]}`,
		WeekNumber:    10,
		WeekYear:      2026,
		WeekStartDate: monday,
		WeekEndDate:   monday.AddDate(0, 0, 4),
		AuthorID:      author,
	}
}

func TestPublishAndGetOnModernSchema(t *testing.T) {
	repo := setupMenusTestDB(t, "menus_modern", modernMenusDDL)
	ctx := context.Background()
	author := uuid.New()

	id, err := repo.Publish(ctx, samplePublishInput(author))
	require.NoError(t, err)
	require.NotZero(t, id)

	row, err := repo.GetPublished(ctx)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, id, row.ID)
	require.True(t, row.IsPublished)
	require.NotNil(t, row.Metadata)
	require.Contains(t, *row.Metadata, "Soupe à l'oignon")
	require.NotNil(t, row.CreatedBy)
	require.Equal(t, author, *row.CreatedBy)
	require.Equal(t, 10, row.WeekNumber)
}

func TestPublishDemotesPriorMenu(t *testing.T) {
	repo := setupMenusTestDB(t, "menus_demote", modernMenusDDL)
	ctx := context.Background()

	first, err := repo.Publish(ctx, samplePublishInput(uuid.New()))
	require.NoError(t, err)

	second, err := repo.Publish(ctx, samplePublishInput(uuid.New()))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	row, err := repo.GetPublished(ctx)
	require.NoError(t, err)
	require.Equal(t, second, row.ID)

	var published int64
	require.NoError(t, repo.db.Raw("SELECT count(*) FROM weekly_menus WHERE is_published = ?", true).Scan(&published).Error)
	require.EqualValues(t, 1, published)
}

func TestPublishOnLegacySchemaUsesOldColumns(t *testing.T) {
	repo := setupMenusTestDB(t, "menus_legacy", legacyMenusDDL)
	ctx := context.Background()

	// The author column does not exist on this generation; the id is
	// simply not persisted.
	id, err := repo.Publish(ctx, samplePublishInput(uuid.New()))
	require.NoError(t, err)

	row, err := repo.GetPublished(ctx)
	require.NoError(t, err)
	require.Equal(t, id, row.ID)
	require.True(t, row.IsActive)
	require.Nil(t, row.Metadata)
	require.NotNil(t, row.MenuData)
	require.Nil(t, row.CreatedBy)
}

func TestGetPublishedReturnsNilWhenNonePublished(t *testing.T) {
	repo := setupMenusTestDB(t, "menus_empty", modernMenusDDL)

	row, err := repo.GetPublished(context.Background())
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestUnusableSchemaIsAnErrorNotANoop(t *testing.T) {
	repo := setupMenusTestDB(t, "menus_broken", brokenMenusDDL)
	ctx := context.Background()

	_, err := repo.Publish(ctx, samplePublishInput(uuid.Nil))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeSchema, appErr.Code())

	_, err = repo.GetPublished(ctx)
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeSchema, appErr.Code())
}
