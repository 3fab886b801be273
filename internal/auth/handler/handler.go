// Package handler exposes login and user administration over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skillaudit/internal/auth/models"
	"skillaudit/internal/auth/service"
	"skillaudit/internal/xlsx"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/httputil"
	mwauth "skillaudit/pkg/platform/middleware/auth"
	"skillaudit/pkg/requestcontext"
)

// maxImportSize bounds user import uploads (a 200-row sheet is ~20 KB).
const maxImportSize = 5 << 20

type Handler struct {
	logger   *slog.Logger
	users    *service.Service
	verifier mwauth.TokenVerifier
}

func New(users *service.Service, verifier mwauth.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, users: users, verifier: verifier}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)

	admins := mwauth.RequireRole(h.logger, string(models.RoleAdmin))
	r.Route("/users", func(r chi.Router) {
		r.Use(mwauth.RequireAuth(h.verifier, h.logger))
		r.Use(admins)

		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/import", h.handleImport)
		r.Get("/export.xlsx", h.handleExport)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		Role:      string(u.Role),
		Active:    u.Active,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	res, err := h.users.Login(ctx, req.Username, req.Password, r.Header.Get("User-Agent"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token: res.Token,
		User:  toUserResponse(res.User),
	})
}

type createUserRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createUserRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	user, err := h.users.Create(ctx, service.CreateParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Mobile:    req.Mobile,
		Role:      req.Role,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users"))
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type importResponse struct {
	Created int            `json:"created"`
	Errors  map[int]string `json:"errors,omitempty"`
}

// handleImport takes the workbook as the raw request body
// (multipart adds nothing for a single-file machine-to-machine upload).
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := xlsx.ParseUsers(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.users.Import(ctx, rows)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, importResponse{
		Created: outcome.Created,
		Errors:  outcome.Errors,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users"))
		return
	}
	out, err := xlsx.ExportUsers(users)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename=users.xlsx`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
