// Package postgres persists audit events in PostgreSQL (append-only).
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "skillaudit/pkg/domain"
	"skillaudit/pkg/platform/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(category, action, occurred_at, actor_id, report_id, center_code, financial_year, detail, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(e.Category), string(e.Action), e.Timestamp,
		nullUUID(e.ActorID.IsZero(), e.ActorID.String()),
		nullUUID(e.ReportID.IsZero(), e.ReportID.String()),
		e.CenterCode, e.FinancialYear, e.Detail, e.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByReport(ctx context.Context, reportID id.ReportID) ([]audit.Event, error) {
	return s.list(ctx, `SELECT category, action, occurred_at, actor_id, report_id, center_code, financial_year, detail, request_id
		FROM audit_events WHERE report_id = $1 ORDER BY occurred_at`, reportID.String())
}

func (s *Store) ListByActor(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	return s.list(ctx, `SELECT category, action, occurred_at, actor_id, report_id, center_code, financial_year, detail, request_id
		FROM audit_events WHERE actor_id = $1 ORDER BY occurred_at`, actorID.String())
}

func (s *Store) list(ctx context.Context, query string, arg any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e                 audit.Event
			category, action  string
			actorID, reportID sql.NullString
		)
		if err := rows.Scan(&category, &action, &e.Timestamp, &actorID, &reportID,
			&e.CenterCode, &e.FinancialYear, &e.Detail, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		e.Action = audit.Action(action)
		if actorID.Valid {
			if parsed, err := id.ParseUserID(actorID.String); err == nil {
				e.ActorID = parsed
			}
		}
		if reportID.Valid {
			if parsed, err := id.ParseReportID(reportID.String); err == nil {
				e.ReportID = parsed
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullUUID(isZero bool, s string) any {
	if isZero {
		return nil
	}
	return s
}
