package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Service manages the health state of the upstream dependencies.
// All state is in-memory and resets on application restart.
type Service struct {
	mu     sync.RWMutex
	items  map[string]*HealthItem
	checks map[string]CheckFunc
	logger zerolog.Logger
}

// NewService creates a new health service.
func NewService(logger zerolog.Logger) *Service {
	return &Service{
		items:  make(map[string]*HealthItem),
		checks: make(map[string]CheckFunc),
		logger: logger.With().Str("component", "health").Logger(),
	}
}

// RegisterItem adds an item to health tracking with OK status. check may be
// nil for items that are only updated by their owners.
func (s *Service) RegisterItem(id, name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[id] = &HealthItem{ID: id, Name: name, Status: StatusOK}
	if check != nil {
		s.checks[id] = check
	}

	s.logger.Debug().Str("id", id).Str("name", name).Msg("Registered health item")
}

// SetError sets an item to Error status with a message.
func (s *Service) SetError(id, message string) {
	s.setStatus(id, StatusError, message)
}

// SetWarning sets an item to Warning status with a message.
func (s *Service) SetWarning(id, message string) {
	s.setStatus(id, StatusWarning, message)
}

// ClearStatus resets an item to OK status.
func (s *Service) ClearStatus(id string) {
	s.setStatus(id, StatusOK, "")
}

func (s *Service) setStatus(id string, status HealthStatus, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		s.logger.Warn().Str("id", id).Msg("Attempted to update status for unregistered item")
		return
	}

	if item.Status == status && item.Message == message {
		return
	}

	oldStatus := item.Status
	item.Status = status
	item.Message = message
	if status != StatusOK {
		now := time.Now()
		item.Timestamp = &now
	} else {
		item.Timestamp = nil
	}

	s.logger.Info().
		Str("id", id).
		Str("oldStatus", string(oldStatus)).
		Str("newStatus", string(status)).
		Str("message", message).
		Msg("Health status changed")
}

// Check runs the registered probe for id and records its outcome.
func (s *Service) Check(ctx context.Context, id string) (TestResult, bool) {
	s.mu.RLock()
	_, exists := s.items[id]
	check := s.checks[id]
	s.mu.RUnlock()

	if !exists {
		return TestResult{}, false
	}
	if check == nil {
		return TestResult{ID: id, Success: s.IsHealthy(id), Message: "no check available"}, true
	}

	if err := check(ctx); err != nil {
		s.SetError(id, err.Error())
		return TestResult{ID: id, Message: err.Error()}, true
	}
	s.ClearStatus(id)
	return TestResult{ID: id, Success: true, Message: "Connection verified"}, true
}

// GetAll returns every item sorted by ID.
func (s *Service) GetAll() []HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]HealthItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// GetItem returns a single item by ID.
func (s *Service) GetItem(id string) *HealthItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		copy := *item
		return &copy
	}
	return nil
}

// GetSummary returns status counts.
func (s *Service) GetSummary() HealthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary HealthSummary
	for _, item := range s.items {
		switch item.Status {
		case StatusOK:
			summary.OK++
		case StatusWarning:
			summary.Warning++
		case StatusError:
			summary.Error++
		}
	}
	summary.HasIssues = summary.Warning > 0 || summary.Error > 0
	return summary
}

// IsHealthy returns true if the specified item is OK.
func (s *Service) IsHealthy(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return item.Status == StatusOK
	}
	return false
}
