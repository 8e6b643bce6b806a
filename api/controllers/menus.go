package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lmorand/brasserie-backend/api/middleware"
	"github.com/lmorand/brasserie-backend/api/responses"
	"github.com/lmorand/brasserie-backend/api/validators"
	"github.com/lmorand/brasserie-backend/internal/menus"
	"github.com/lmorand/brasserie-backend/pkg/db/models"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
	"github.com/lmorand/brasserie-backend/pkg/logger"
)

// MenuCurrent serves the published menu. The menu is public; no menu yet
// published is a null payload, not an error.
func MenuCurrent(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		menu, err := svc.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"menu": menu})
	}
}

// MenuPublish replaces the current menu. Restricted to staff and admin.
func MenuPublish(svc menus.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		role := middleware.RoleFromContext(r.Context())
		if role != models.RoleAdmin && role != models.RoleStaff {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
			return
		}

		authorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "author identity unresolved"))
			return
		}

		var body menus.PublishRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Publish(r.Context(), body, authorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
