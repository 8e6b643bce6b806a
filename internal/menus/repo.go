package menus

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmorand/brasserie-backend/pkg/db"
	"github.com/lmorand/brasserie-backend/pkg/db/models"
	"github.com/lmorand/brasserie-backend/pkg/db/schema"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
)

const TableWeeklyMenus = "weekly_menus"

// Column preference orders across schema generations. The first present
// column wins.
var (
	payloadColumns = []string{"metadata", "menu_data"}
	flagColumns    = []string{"is_published", "is_active"}
	recencyColumns = []string{"week_start_date", "created_at", "id"}
)

var menuOptionalColumns = []string{
	"metadata", "menu_data", "is_published", "is_active",
	"week_number", "week_year", "week_start_date", "week_end_date", "created_by",
}

// PublishInput is the resolved, validated data handed to the store.
type PublishInput struct {
	PayloadJSON   string
	WeekNumber    int
	WeekYear      int
	WeekStartDate time.Time
	WeekEndDate   time.Time
	AuthorID      uuid.UUID
}

// Repository persists weekly menus against whichever column generation the
// deployment has.
type Repository struct {
	db   *gorm.DB
	caps *schema.Capabilities
}

func NewRepository(gdb *gorm.DB, caps *schema.Capabilities) *Repository {
	return &Repository{db: gdb, caps: caps}
}

func (r *Repository) firstPresent(candidates []string) string {
	for _, col := range candidates {
		if r.caps.HasColumn(TableWeeklyMenus, col) {
			return col
		}
	}
	return ""
}

func (r *Repository) selectColumns() []string {
	cols := []string{"id", "created_at", "updated_at"}
	for _, col := range menuOptionalColumns {
		if r.caps.HasColumn(TableWeeklyMenus, col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// GetPublished returns the current menu row, or nil when none is published.
func (r *Repository) GetPublished(ctx context.Context) (*models.WeeklyMenu, error) {
	flagCol := r.firstPresent(flagColumns)
	if flagCol == "" || r.firstPresent(payloadColumns) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSchema, "weekly_menus table lacks menu storage columns")
	}

	var row models.WeeklyMenu
	err := r.db.WithContext(ctx).
		Model(&models.WeeklyMenu{}).
		Select(r.selectColumns()).
		Where(flagCol+" = ?", true).
		Order(r.firstPresent(recencyColumns) + " DESC").
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load published menu")
	}
	return &row, nil
}

// Publish demotes the current menu and inserts the new one in a single
// transaction, so no window exists where zero or two menus are current.
func (r *Repository) Publish(ctx context.Context, input PublishInput) (int64, error) {
	payloadCol := r.firstPresent(payloadColumns)
	flagCol := r.firstPresent(flagColumns)
	if payloadCol == "" || flagCol == "" {
		return 0, pkgerrors.New(pkgerrors.CodeSchema, "weekly_menus table lacks menu storage columns")
	}

	now := time.Now().UTC()
	has := func(col string) bool { return r.caps.HasColumn(TableWeeklyMenus, col) }

	cols := []db.OptionalColumn{
		{Name: payloadCol, Present: true, Value: input.PayloadJSON},
		{Name: flagCol, Present: true, Value: true},
		{Name: "week_number", Present: has("week_number"), Value: input.WeekNumber},
		{Name: "week_year", Present: has("week_year"), Value: input.WeekYear},
		{Name: "week_start_date", Present: has("week_start_date"), Value: input.WeekStartDate},
		{Name: "week_end_date", Present: has("week_end_date"), Value: input.WeekEndDate},
		{Name: "created_by", Present: has("created_by") && input.AuthorID != uuid.Nil, Value: input.AuthorID},
		{Name: "created_at", Present: true, Value: now},
		{Name: "updated_at", Present: true, Value: now},
	}

	insertSQL, insertArgs, err := db.BuildInsert(TableWeeklyMenus, "id", cols)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeSchema, err, "build menu insert")
	}

	demoteSQL, demoteArgs, err := db.BuildUpdate(TableWeeklyMenus,
		[]db.OptionalColumn{
			{Name: flagCol, Present: true, Value: false},
			{Name: "updated_at", Present: true, Value: now},
		},
		flagCol+" = ?", true)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeSchema, err, "build menu demote")
	}

	var id int64
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(demoteSQL, demoteArgs...).Error; err != nil {
			return err
		}
		return tx.Raw(insertSQL, insertArgs...).Scan(&id).Error
	})
	if txErr != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "publish menu")
	}
	return id, nil
}
