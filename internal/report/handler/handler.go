// Package handler exposes the report workflow over HTTP. Routes are gated
// per role: auditors file and submit, supervisors decide, center heads
// annotate.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmodels "skillaudit/internal/auth/models"
	"skillaudit/internal/notify"
	"skillaudit/internal/render"
	"skillaudit/internal/report/models"
	"skillaudit/internal/report/service"
	"skillaudit/internal/xlsx"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
	"skillaudit/pkg/platform/httputil"
	mwauth "skillaudit/pkg/platform/middleware/auth"
	"skillaudit/pkg/requestcontext"
)

type Handler struct {
	logger   *slog.Logger
	reports  *service.Service
	notifier *notify.Service
	trail    audit.Store
	verifier mwauth.TokenVerifier
}

func New(reports *service.Service, notifier *notify.Service, trail audit.Store,
	verifier mwauth.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		reports:  reports,
		notifier: notifier,
		trail:    trail,
		verifier: verifier,
	}
}

func (h *Handler) Register(r chi.Router) {
	auditors := mwauth.RequireRole(h.logger, string(authmodels.RoleAuditor), string(authmodels.RoleAdmin))
	supervisors := mwauth.RequireRole(h.logger, string(authmodels.RoleSupervisor), string(authmodels.RoleAdmin))
	centerHeads := mwauth.RequireRole(h.logger, string(authmodels.RoleCenterHead))

	r.Route("/reports", func(r chi.Router) {
		r.Use(mwauth.RequireAuth(h.verifier, h.logger))

		r.With(auditors).Post("/", h.handleCreate)
		r.Get("/", h.handleList)

		r.Route("/{reportID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Get("/export.xlsx", h.handleExport)
			r.With(supervisors).Get("/audit-trail", h.handleAuditTrail)

			r.With(auditors).Put("/observations", h.handleUpdateObservations)
			r.With(auditors).Post("/submit", h.handleSubmit)
			r.With(supervisors).Post("/approve", h.handleApprove)
			r.With(supervisors).Post("/reject", h.handleReject)
			r.With(supervisors).Post("/send", h.handleSend)

			r.With(centerHeads).Post("/remarks/request", h.handleRequestRemarkEdit)
			r.With(supervisors).Post("/remarks/grant", h.handleGrantRemarkEdit)
			r.With(centerHeads).Post("/remarks", h.handleSubmitRemarks)
		})
	})
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request) (id.ReportID, bool) {
	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid report id"))
		return id.ReportID{}, false
	}
	return reportID, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createReportRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	report, err := h.reports.Create(ctx, req.params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(report))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Get(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

// handleList filters by ?status= or ?center=; status wins when both are
// present.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		reports []*models.AuditReport
		err     error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		var status models.WorkflowStatus
		status, err = models.ParseWorkflowStatus(r.URL.Query().Get("status"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		reports, err = h.reports.ListByStatus(ctx, status)
	case r.URL.Query().Get("center") != "":
		reports, err = h.reports.ListByCenter(ctx, r.URL.Query().Get("center"))
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a status or center filter is required"))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, toResponse(report))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateObservationsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	report, err := h.reports.UpdateObservations(ctx, reportID, req.entries())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[submitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	report, err := h.reports.Submit(ctx, reportID, req.AuditorRemarks)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}

	report, err := h.reports.Approve(ctx, reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The decision stands even if the email cannot go out.
	if h.notifier != nil {
		if err := h.notifier.SendReport(ctx, report); err != nil {
			h.logger.ErrorContext(ctx, "approved report email failed",
				"request_id", requestcontext.RequestID(ctx),
				"report_id", report.ID,
				"error", err,
			)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

// handleSend re-sends the approved report to the center head. Unlike the
// send on approval this one reports failures to the caller.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Get(ctx, reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.notifier.SendReport(ctx, report); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[rejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	report, err := h.reports.Reject(ctx, reportID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleRequestRemarkEdit(w http.ResponseWriter, r *http.Request) {
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.RequestRemarkEdit(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleGrantRemarkEdit(w http.ResponseWriter, r *http.Request) {
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.GrantRemarkEdit(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleSubmitRemarks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[remarksRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	report, err := h.reports.SubmitRemarks(ctx, reportID, req.Remarks)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(report))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.reports.Get(ctx, reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := render.Build(report)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := xlsx.ExportReport(view)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename=`+view.Filename("xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID, ok := h.reportID(w, r)
	if !ok {
		return
	}
	events, err := h.trail.ListByReport(ctx, reportID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "audit trail unavailable"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTrailResponse(events))
}

type trailEventResponse struct {
	Category  string `json:"category"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func toTrailResponse(events []audit.Event) []trailEventResponse {
	out := make([]trailEventResponse, 0, len(events))
	for _, e := range events {
		resp := trailEventResponse{
			Category:  string(e.Category),
			Action:    string(e.Action),
			Timestamp: e.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Detail:    e.Detail,
		}
		if !e.ActorID.IsZero() {
			resp.ActorID = e.ActorID.String()
		}
		out = append(out, resp)
	}
	return out
}
