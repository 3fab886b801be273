package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"skillaudit/internal/catalog"
	"skillaudit/internal/compliance"
	"skillaudit/internal/report/models"
	id "skillaudit/pkg/domain"
	"skillaudit/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code raised by the
// (center_code, financial_year) unique constraint.
const uniqueViolation = "23505"

// Postgres persists reports in PostgreSQL. Observations, area totals and
// statuses travel as JSONB; the workflow columns stay relational so listing
// by status is an index scan.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const reportColumns = `id, center_id, center_code, center_name, center_type, financial_year,
	audit_date, placement_applicable, observations, area_totals, grand_total,
	area_statuses, overall_status, status, reject_reason, remark_edit,
	auditor_id, auditor_remarks, created_at, updated_at, submitted_at, decided_at`

func (s *Postgres) Create(ctx context.Context, r *models.AuditReport) error {
	obs, totals, statuses, err := marshalComposite(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_reports (`+reportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		r.ID.String(), r.CenterID.String(), r.CenterCode, r.CenterName, string(r.CenterType), r.FinancialYear,
		r.AuditDate, r.PlacementApplicable, obs, totals, r.GrandTotal,
		statuses, string(r.OverallStatus), string(r.Status), r.RejectReason, string(r.RemarkEdit),
		nullableID(r.AuditorID.IsZero(), r.AuditorID.String()), r.AuditorRemarks, r.CreatedAt, r.UpdatedAt, r.SubmittedAt, r.DecidedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE id = $1`, reportID.String())
	return scanReport(row)
}

func (s *Postgres) FindByCenterAndYear(ctx context.Context, centerCode, financialYear string) (*models.AuditReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE upper(center_code) = upper($1) AND financial_year = $2`,
		centerCode, financialYear)
	return scanReport(row)
}

func (s *Postgres) ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.AuditReport, error) {
	return s.list(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE status = $1 ORDER BY updated_at DESC`,
		string(status))
}

func (s *Postgres) ListByCenter(ctx context.Context, centerCode string) ([]*models.AuditReport, error) {
	return s.list(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE upper(center_code) = upper($1) ORDER BY financial_year DESC`,
		centerCode)
}

func (s *Postgres) list(ctx context.Context, query string, arg any) ([]*models.AuditReport, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Execute loads the row FOR UPDATE so validate and mutate run under the row
// lock; a concurrent transition waits here and then fails its own
// validation against the committed state.
func (s *Postgres) Execute(ctx context.Context, reportID id.ReportID,
	validate func(*models.AuditReport) error,
	mutate func(*models.AuditReport)) (*models.AuditReport, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE id = $1 FOR UPDATE`, reportID.String())
	r, err := scanReport(row)
	if err != nil {
		return nil, err
	}

	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)

	obs, totals, statuses, err := marshalComposite(r)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE audit_reports SET
			observations = $2, area_totals = $3, grand_total = $4,
			area_statuses = $5, overall_status = $6, status = $7,
			reject_reason = $8, remark_edit = $9, auditor_remarks = $10,
			updated_at = $11, submitted_at = $12, decided_at = $13
		WHERE id = $1`,
		r.ID.String(), obs, totals, r.GrandTotal,
		statuses, string(r.OverallStatus), string(r.Status),
		r.RejectReason, string(r.RemarkEdit), r.AuditorRemarks,
		r.UpdatedAt, r.SubmittedAt, r.DecidedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r, nil
}

func marshalComposite(r *models.AuditReport) (obs, totals, statuses []byte, err error) {
	if obs, err = json.Marshal(r.Observations); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal observations: %w", err)
	}
	if totals, err = json.Marshal(r.AreaTotals); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal area totals: %w", err)
	}
	if statuses, err = json.Marshal(r.AreaStatuses); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal area statuses: %w", err)
	}
	return obs, totals, statuses, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func nullableID(isZero bool, s string) any {
	if isZero {
		return nil
	}
	return s
}

func scanReport(row scannable) (*models.AuditReport, error) {
	var (
		r                                 models.AuditReport
		rid, cid                          string
		aid                               sql.NullString
		centerType, overall, status, edit string
		obs, totals, statuses             []byte
		submittedAt, decidedAt            sql.NullTime
	)
	err := row.Scan(&rid, &cid, &r.CenterCode, &r.CenterName, &centerType, &r.FinancialYear,
		&r.AuditDate, &r.PlacementApplicable, &obs, &totals, &r.GrandTotal,
		&statuses, &overall, &status, &r.RejectReason, &edit,
		&aid, &r.AuditorRemarks, &r.CreatedAt, &r.UpdatedAt, &submittedAt, &decidedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	if r.ID, err = id.ParseReportID(rid); err != nil {
		return nil, err
	}
	if r.CenterID, err = id.ParseCenterID(cid); err != nil {
		return nil, err
	}
	if aid.Valid {
		if r.AuditorID, err = id.ParseUserID(aid.String); err != nil {
			return nil, err
		}
	}
	r.CenterType = catalog.CenterType(centerType)
	r.OverallStatus = compliance.Status(overall)
	r.Status = models.WorkflowStatus(status)
	r.RemarkEdit = models.RemarkEditState(edit)

	if err := json.Unmarshal(obs, &r.Observations); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	if len(totals) > 0 {
		if err := json.Unmarshal(totals, &r.AreaTotals); err != nil {
			return nil, fmt.Errorf("unmarshal area totals: %w", err)
		}
	}
	if len(statuses) > 0 {
		if err := json.Unmarshal(statuses, &r.AreaStatuses); err != nil {
			return nil, fmt.Errorf("unmarshal area statuses: %w", err)
		}
	}
	if submittedAt.Valid {
		r.SubmittedAt = &submittedAt.Time
	}
	if decidedAt.Valid {
		r.DecidedAt = &decidedAt.Time
	}
	return &r, nil
}
