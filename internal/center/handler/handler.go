// Package handler exposes the center registry over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmodels "skillaudit/internal/auth/models"
	"skillaudit/internal/catalog"
	"skillaudit/internal/center/models"
	"skillaudit/internal/center/store"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/httputil"
	mwauth "skillaudit/pkg/platform/middleware/auth"
	"skillaudit/pkg/platform/sentinel"
	"skillaudit/pkg/requestcontext"
)

type Handler struct {
	logger   *slog.Logger
	centers  store.CenterStore
	verifier mwauth.TokenVerifier
}

func New(centers store.CenterStore, verifier mwauth.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, centers: centers, verifier: verifier}
}

func (h *Handler) Register(r chi.Router) {
	admins := mwauth.RequireRole(h.logger, string(authmodels.RoleAdmin))

	r.Route("/centers", func(r chi.Router) {
		r.Use(mwauth.RequireAuth(h.verifier, h.logger))

		r.Get("/", h.handleList)
		r.Get("/{code}", h.handleGet)
		r.With(admins).Post("/", h.handleCreate)
	})
}

type createCenterRequest struct {
	Code      string `json:"code" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Type      string `json:"type" validate:"required"`
	HeadName  string `json:"head_name"`
	HeadEmail string `json:"head_email" validate:"omitempty,email"`
}

func (r *createCenterRequest) Validate() error {
	_, err := catalog.ParseCenterType(r.Type)
	return err
}

type centerResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	HeadName  string `json:"head_name,omitempty"`
	HeadEmail string `json:"head_email,omitempty"`
	Active    bool   `json:"active"`
}

func toResponse(c *models.Center) centerResponse {
	return centerResponse{
		ID:        c.ID.String(),
		Code:      c.Code,
		Name:      c.Name,
		Type:      string(c.Type),
		HeadName:  c.HeadName,
		HeadEmail: c.HeadEmail,
		Active:    c.Active,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createCenterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	centerType, err := catalog.ParseCenterType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	center := &models.Center{
		ID:        id.CenterID(uuid.New()),
		Code:      req.Code,
		Name:      req.Name,
		Type:      centerType,
		HeadName:  req.HeadName,
		HeadEmail: req.HeadEmail,
		Active:    true,
	}
	if err := center.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.centers.Create(ctx, center); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeConflict, "center code %q is taken", req.Code))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create center"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(center))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	center, err := h.centers.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "center not found"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "center lookup failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(center))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	centers, err := h.centers.List(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list centers"))
		return
	}
	out := make([]centerResponse, 0, len(centers))
	for _, c := range centers {
		out = append(out, toResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
