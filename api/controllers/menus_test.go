package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lmorand/brasserie-backend/api/middleware"
	"github.com/lmorand/brasserie-backend/internal/menus"
	"github.com/lmorand/brasserie-backend/pkg/db/models"
)

type fakeMenuService struct {
	published int
}

func (f *fakeMenuService) Current(context.Context) (*menus.MenuDTO, error) {
	return nil, nil
}

func (f *fakeMenuService) Publish(context.Context, menus.PublishRequest, uuid.UUID) (*menus.PublishResponse, error) {
	f.published++
	return &menus.PublishResponse{ID: 1}, nil
}

func TestMenuPublishUnresolvedAuthorForbidden(t *testing.T) {
	svc := &fakeMenuService{}
	handler := MenuPublish(svc, nil)

	// Role present but no resolvable subject id: the caller is
	// authenticated yet cannot be attributed, which is a 403.
	cases := map[string]string{
		"missing user id": "",
		"garbage user id": "not-a-uuid",
	}
	for name, userID := range cases {
		ctx := middleware.WithRole(context.Background(), models.RoleStaff)
		if userID != "" {
			ctx = middleware.WithUserID(ctx, userID)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/menus/", strings.NewReader(`{}`)).WithContext(ctx)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", name, rec.Code)
		}
	}
	if svc.published != 0 {
		t.Fatalf("publish must not be reached without an author identity")
	}
}
