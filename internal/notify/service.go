package notify

import (
	"context"
	"errors"
	"log/slog"

	centerstore "skillaudit/internal/center/store"
	"skillaudit/internal/render"
	"skillaudit/internal/report/models"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
	"skillaudit/pkg/platform/sentinel"
	"skillaudit/pkg/requestcontext"
)

// AuditPublisher is the emission seam; nil disables auditing (tests).
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service renders an approved report and mails it to the center head with
// the PDF attached.
type Service struct {
	centers centerstore.CenterStore
	mailer  Mailer
	auditor AuditPublisher
	logger  *slog.Logger
}

func NewService(centers centerstore.CenterStore, mailer Mailer, auditor AuditPublisher, logger *slog.Logger) *Service {
	return &Service{centers: centers, mailer: mailer, auditor: auditor, logger: logger}
}

// SendReport emails the report to its center head. Only approved reports
// leave the building.
func (s *Service) SendReport(ctx context.Context, report *models.AuditReport) error {
	if report.Status != models.StatusApproved {
		return dErrors.New(dErrors.CodeInvariantViolation, "only approved reports can be emailed")
	}

	center, err := s.centers.FindByCode(ctx, report.CenterCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "center %q is not registered", report.CenterCode)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve center")
	}
	if center.HeadEmail == "" {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "center %q has no head email on record", center.Code)
	}

	view, err := render.Build(report)
	if err != nil {
		return err
	}
	body, err := render.HTML(view)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render email body")
	}
	pdf, err := render.PDF(view)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render report pdf")
	}

	msg := Message{
		To:       []Recipient{{Name: center.HeadName, Email: center.HeadEmail}},
		Subject:  view.Subject(),
		HTMLBody: body,
		Attachments: []Attachment{{
			Filename:    view.Filename("pdf"),
			ContentType: "application/pdf",
			Content:     pdf,
		}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "report email failed",
			"report_id", report.ID,
			"center_code", report.CenterCode,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send report email")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Category:      audit.CategoryOperations,
			Action:        audit.ActionReportEmailed,
			ActorID:       requestcontext.UserID(ctx),
			ReportID:      report.ID,
			CenterCode:    report.CenterCode,
			FinancialYear: report.FinancialYear,
			Detail:        center.HeadEmail,
			RequestID:     requestcontext.RequestID(ctx),
		})
	}
	return nil
}
