// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/shopauth/internal/platform/request"
	"github.com/taibuivan/shopauth/internal/platform/respond"
	"github.com/taibuivan/shopauth/internal/platform/validate"
	"github.com/taibuivan/shopauth/pkg/pagination"
)

// Review kinds accepted by the kind query parameter.
const (
	KindSecurity = "security"
	KindLogin    = "login"
)

// Handler exposes the audit log to administrators.
type Handler struct {
	reader *Reader
}

// NewHandler creates a new audit handler.
func NewHandler(reader *Reader) *Handler {
	return &Handler{reader: reader}
}

// RegisterRoutes mounts the review endpoints. The caller guards them with
// an admin role check.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listEntries)
}

/*
GET /api/v1/admin/audit

Description: Lists audit entries, newest first. At most one selector applies,
checked in the order kind, account_id, action, ip, session_id, days. Without a selector
the last week is returned.

Request:
  - kind: "security" | "login"
  - account_id: string (UUID)
  - action: string
  - ip: string
  - session_id: string
  - days: int
  - page, limit: pagination

Response:
  - 200: []Entry with pagination meta
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	kind := query.Get("kind")
	accountID := query.Get("account_id")
	action := query.Get("action")
	ipAddress := query.Get("ip")
	sessionID := query.Get("session_id")
	page := pagination.FromRequest(request)

	validator := &validate.Validator{}
	if kind != "" {
		validator.OneOf("kind", kind, KindSecurity, KindLogin)
	}
	if accountID != "" {
		validator.UUID("account_id", accountID)
	}
	if action != "" {
		validator.Custom("action", !Action(action).Valid(), "is not a known action")
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var (
		result *Page
		err    error
	)
	switch {
	case kind == KindSecurity:
		result, err = handler.reader.SecurityEvents(request.Context(), page)
	case kind == KindLogin:
		result, err = handler.reader.LoginEvents(request.Context(), page)
	case accountID != "":
		result, err = handler.reader.ByAccount(request.Context(), accountID, page)
	case action != "":
		result, err = handler.reader.ByAction(request.Context(), Action(action), page)
	case ipAddress != "":
		result, err = handler.reader.ByIPAddress(request.Context(), ipAddress, page)
	case sessionID != "":
		result, err = handler.reader.BySession(request.Context(), sessionID, page)
	default:
		result, err = handler.reader.Recent(request.Context(), requestutil.QueryInt(request, "days", 0), page)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, result.Entries, result.Meta)
}
