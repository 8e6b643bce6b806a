package models

import (
	"time"

	"github.com/google/uuid"
)

// WeeklyMenu is the published carte for one ISO week. The payload lives in a
// single JSON column whose name shifted across schema generations: modern
// deployments use metadata/is_published, older ones menu_data/is_active.
// Repositories write whichever set the live schema reports.
type WeeklyMenu struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`

	// Modern columns.
	Metadata    *string `gorm:"column:metadata;type:jsonb"`
	IsPublished bool    `gorm:"column:is_published;not null;default:false"`

	// Legacy columns kept for partially migrated databases.
	MenuData *string `gorm:"column:menu_data;type:jsonb"`
	IsActive bool    `gorm:"column:is_active;not null;default:false"`

	WeekNumber    int        `gorm:"column:week_number"`
	WeekYear      int        `gorm:"column:week_year"`
	WeekStartDate *time.Time `gorm:"column:week_start_date"`
	WeekEndDate   *time.Time `gorm:"column:week_end_date"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
