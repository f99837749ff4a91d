package slot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAvailable returns the slots a client may book right now, ordered by
// date then time. The result is time dependent: slots lapse as now moves.
func (s *Service) ListAvailable(ctx context.Context) ([]Slot, error) {
	now := s.now()

	slots, err := s.repo.ListAvailable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	eligible := make([]Slot, 0, len(slots))
	for _, sl := range slots {
		if sl.Eligible(now) {
			eligible = append(eligible, sl)
		}
	}
	if dropped := len(slots) - len(eligible); dropped > 0 {
		s.logger.Warn("repository returned ineligible slots", zap.Int("dropped", dropped))
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].At(time.UTC).Before(eligible[j].At(time.UTC))
	})

	return eligible, nil
}

// CheckAvailability reports whether the slot at date/time can still be booked.
func (s *Service) CheckAvailability(ctx context.Context, date, timeOfDay string) (bool, error) {
	if date == "" {
		return false, &ValidationError{Field: "date", Message: "date is required"}
	}
	if timeOfDay == "" {
		return false, &ValidationError{Field: "time", Message: "time is required"}
	}

	d, err := ParseDate(date)
	if err != nil {
		return false, &ValidationError{Field: "date", Message: err.Error()}
	}
	tod, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return false, &ValidationError{Field: "time", Message: err.Error()}
	}

	available, err := s.repo.IsAvailable(ctx, d, tod, s.now())
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return available, nil
}
