// Package menus stores and serves the weekly carte. One menu row is current
// at a time; the payload is a JSON document keyed by French weekday names.
package menus

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Weekdays the carte must cover, in service order. Weekend days are not part
// of the offer.
var requiredWeekdays = []string{"LUNDI", "MARDI", "MERCREDI", "JEUDI", "VENDREDI"}

// MenuItem is one dish on the carte.
type MenuItem struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// MenuCategory groups dishes under a heading, e.g. Entrées or Plats.
type MenuCategory struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// WeeklyMenuPayload maps weekday names to their ordered categories.
type WeeklyMenuPayload map[string][]MenuCategory

// PublishRequest carries the menu document to publish.
type PublishRequest struct {
	Menu WeeklyMenuPayload `json:"menu" validate:"required"`
}

// MenuDTO is the transport shape of a stored menu.
type MenuDTO struct {
	ID            int64             `json:"id"`
	WeekNumber    int               `json:"week_number,omitempty"`
	WeekYear      int               `json:"week_year,omitempty"`
	WeekStartDate *time.Time        `json:"week_start_date,omitempty"`
	WeekEndDate   *time.Time        `json:"week_end_date,omitempty"`
	Menu          WeeklyMenuPayload `json:"menu"`
	Published     bool              `json:"published"`
	CreatedBy     *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// PublishResponse returns the generated row id.
type PublishResponse struct {
	ID int64 `json:"id"`
}
