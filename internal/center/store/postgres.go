package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"skillaudit/internal/catalog"
	"skillaudit/internal/center/models"
	id "skillaudit/pkg/domain"
	"skillaudit/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const centerColumns = `id, code, name, center_type, head_name, head_email, active`

func (s *Postgres) Create(ctx context.Context, c *models.Center) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO centers (`+centerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID.String(), c.Code, c.Name, string(c.Type), c.HeadName, c.HeadEmail, c.Active,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create center: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, centerID id.CenterID) (*models.Center, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+centerColumns+` FROM centers WHERE id = $1`, centerID.String())
	return scanCenter(row)
}

func (s *Postgres) FindByCode(ctx context.Context, code string) (*models.Center, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+centerColumns+` FROM centers WHERE upper(code) = upper($1)`, code)
	return scanCenter(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Center, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+centerColumns+` FROM centers ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	defer rows.Close()

	var out []*models.Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCenter(row scannable) (*models.Center, error) {
	var (
		c          models.Center
		cid, ctype string
	)
	err := row.Scan(&cid, &c.Code, &c.Name, &ctype, &c.HeadName, &c.HeadEmail, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan center: %w", err)
	}
	if c.ID, err = id.ParseCenterID(cid); err != nil {
		return nil, err
	}
	c.Type = catalog.CenterType(ctype)
	return &c, nil
}
