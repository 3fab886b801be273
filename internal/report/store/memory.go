package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"skillaudit/internal/catalog"
	"skillaudit/internal/report/models"
	id "skillaudit/pkg/domain"
	"skillaudit/pkg/platform/sentinel"
)

// InMemory keeps reports in a map. It favors clarity over performance and
// backs tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	reports map[id.ReportID]*models.AuditReport
	byKey   map[string]id.ReportID // centerCode|financialYear
}

func NewInMemory() *InMemory {
	return &InMemory{
		reports: make(map[id.ReportID]*models.AuditReport),
		byKey:   make(map[string]id.ReportID),
	}
}

func key(centerCode, financialYear string) string {
	return strings.ToUpper(centerCode) + "|" + financialYear
}

func (s *InMemory) Create(_ context.Context, report *models.AuditReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(report.CenterCode, report.FinancialYear)
	if _, exists := s.byKey[k]; exists {
		return sentinel.ErrConflict
	}
	cp := clone(report)
	s.reports[report.ID] = cp
	s.byKey[k] = report.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reports[reportID]; ok {
		return clone(r), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByCenterAndYear(_ context.Context, centerCode, financialYear string) (*models.AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rid, ok := s.byKey[key(centerCode, financialYear)]; ok {
		return clone(s.reports[rid]), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByStatus(_ context.Context, status models.WorkflowStatus) ([]*models.AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AuditReport
	for _, r := range s.reports {
		if r.Status == status {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (s *InMemory) ListByCenter(_ context.Context, centerCode string) ([]*models.AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AuditReport
	for _, r := range s.reports {
		if strings.EqualFold(r.CenterCode, centerCode) {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

// Execute runs validate-then-mutate while holding the store lock, so no
// other writer can slip between the check and the update.
func (s *InMemory) Execute(_ context.Context, reportID id.ReportID,
	validate func(*models.AuditReport) error,
	mutate func(*models.AuditReport)) (*models.AuditReport, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reports[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	work := clone(r)
	if err := validate(work); err != nil {
		return nil, err
	}
	mutate(work)
	s.reports[reportID] = work
	return clone(work), nil
}

func clone(r *models.AuditReport) *models.AuditReport {
	cp := *r
	cp.Observations = append([]models.Observation(nil), r.Observations...)
	if r.AreaTotals != nil {
		cp.AreaTotals = make(map[catalog.AreaName]float64, len(r.AreaTotals))
	}
	for k, v := range r.AreaTotals {
		cp.AreaTotals[k] = v
	}
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		cp.SubmittedAt = &t
	}
	if r.DecidedAt != nil {
		t := *r.DecidedAt
		cp.DecidedAt = &t
	}
	return &cp
}

// InMemoryRemarkLock is the single-process remark lock.
type InMemoryRemarkLock struct {
	mu    sync.Mutex
	held  map[id.ReportID]time.Time
	clock func() time.Time
}

func NewInMemoryRemarkLock() *InMemoryRemarkLock {
	return &InMemoryRemarkLock{held: make(map[id.ReportID]time.Time), clock: time.Now}
}

func (l *InMemoryRemarkLock) Acquire(_ context.Context, reportID id.ReportID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if until, ok := l.held[reportID]; ok && now.Before(until) {
		return false, nil
	}
	l.held[reportID] = now.Add(ttl)
	return true, nil
}

func (l *InMemoryRemarkLock) Release(_ context.Context, reportID id.ReportID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, reportID)
	return nil
}
