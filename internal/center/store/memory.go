package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"skillaudit/internal/center/models"
	id "skillaudit/pkg/domain"
	"skillaudit/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	centers map[id.CenterID]*models.Center
	byCode  map[string]id.CenterID
}

func NewInMemory() *InMemory {
	return &InMemory{
		centers: make(map[id.CenterID]*models.Center),
		byCode:  make(map[string]id.CenterID),
	}
}

func (s *InMemory) Create(_ context.Context, c *models.Center) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := strings.ToUpper(c.Code)
	if _, exists := s.byCode[code]; exists {
		return sentinel.ErrConflict
	}
	cp := *c
	s.centers[c.ID] = &cp
	s.byCode[code] = c.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, centerID id.CenterID) (*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.centers[centerID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByCode(_ context.Context, code string) (*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cid, ok := s.byCode[strings.ToUpper(code)]; ok {
		cp := *s.centers[cid]
		return &cp, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(_ context.Context) ([]*models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Center, 0, len(s.centers))
	for _, c := range s.centers {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
