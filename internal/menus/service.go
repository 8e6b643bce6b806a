package menus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmorand/brasserie-backend/pkg/db/models"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
)

// Service defines the behavior needed by the menu controller.
type Service interface {
	Current(ctx context.Context) (*MenuDTO, error)
	Publish(ctx context.Context, req PublishRequest, authorID uuid.UUID) (*PublishResponse, error)
}

type repository interface {
	GetPublished(ctx context.Context) (*models.WeeklyMenu, error)
	Publish(ctx context.Context, input PublishInput) (int64, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService constructs a menu service. A nil clock falls back to UTC now.
func NewService(repo repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menu repository is required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Current(ctx context.Context) (*MenuDTO, error) {
	row, err := s.repo.GetPublished(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return toDTO(row)
}

func (s *service) Publish(ctx context.Context, req PublishRequest, authorID uuid.UUID) (*PublishResponse, error) {
	if err := validatePayload(req.Menu); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req.Menu)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode menu payload")
	}

	now := s.now()
	year, week := now.ISOWeek()
	monday, friday := weekBounds(now)

	id, err := s.repo.Publish(ctx, PublishInput{
		PayloadJSON:   string(payload),
		WeekNumber:    week,
		WeekYear:      year,
		WeekStartDate: monday,
		WeekEndDate:   friday,
		AuthorID:      authorID,
	})
	if err != nil {
		return nil, err
	}
	return &PublishResponse{ID: id}, nil
}

// validatePayload enforces the carte shape before anything touches the
// store: all five weekdays, each with at least one named category, and no
// foreign keys in the document.
func validatePayload(menu WeeklyMenuPayload) error {
	if len(menu) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu payload is required")
	}

	var problems []string

	for day := range menu {
		if !isRequiredWeekday(day) {
			problems = append(problems, fmt.Sprintf("unknown weekday %q", day))
		}
	}

	for _, day := range requiredWeekdays {
		categories, ok := menu[day]
		if !ok || len(categories) == 0 {
			problems = append(problems, fmt.Sprintf("%s requires at least one category", day))
			continue
		}
		for i, category := range categories {
			if strings.TrimSpace(category.Name) == "" {
				problems = append(problems, fmt.Sprintf("%s category %d has no name", day, i+1))
			}
			for j, item := range category.Items {
				if strings.TrimSpace(item.Name) == "" {
					problems = append(problems, fmt.Sprintf("%s category %d item %d has no name", day, i+1, j+1))
				}
			}
		}
	}

	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid menu payload").WithDetails(problems)
	}
	return nil
}

func isRequiredWeekday(day string) bool {
	for _, d := range requiredWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

// weekBounds returns the Monday and Friday of the week containing now.
func weekBounds(now time.Time) (time.Time, time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 4)
}

func toDTO(row *models.WeeklyMenu) (*MenuDTO, error) {
	raw := row.Metadata
	if raw == nil {
		raw = row.MenuData
	}

	var payload WeeklyMenuPayload
	if raw != nil && *raw != "" {
		if err := json.Unmarshal([]byte(*raw), &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode stored menu")
		}
	}

	return &MenuDTO{
		ID:            row.ID,
		WeekNumber:    row.WeekNumber,
		WeekYear:      row.WeekYear,
		WeekStartDate: row.WeekStartDate,
		WeekEndDate:   row.WeekEndDate,
		Menu:          payload,
		Published:     row.IsPublished || row.IsActive,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
