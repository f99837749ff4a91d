// Package wizard implements the date and time step of the booking flow:
// load the offered slots, let the visitor pick a date then a time, and
// re-check the chosen slot with the server before moving on.
package wizard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/client"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
	PhaseValidating
	PhaseAdvanced
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	case PhaseValidating:
		return "validating"
	case PhaseAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

const (
	NoticeSlotTaken    = "The selected time is no longer available. Please choose another slot."
	NoticeCheckFailed  = "We could not confirm this time slot right now. Please try again."
	genericLoadMessage = "Could not load the available slots. Please try again."
)

var (
	ErrClosed          = errors.New("booking step is closed")
	ErrNotReady        = errors.New("booking step is not ready for input")
	ErrNoDate          = errors.New("select a date first")
	ErrDateNotOffered  = errors.New("date has no available slots")
	ErrTimeNotOffered  = errors.New("time is not offered on the selected date")
	ErrIncomplete      = errors.New("select both a date and a time")
	ErrSuperseded      = errors.New("step state changed while the slot was being checked")
	ErrCheckUnverified = errors.New("slot availability could not be verified")
)

// Selection is the visitor's pick. Time is "HH:MM".
type Selection struct {
	Date string
	Time string
}

func (s Selection) Complete() bool {
	return s.Date != "" && s.Time != ""
}

// SlotSource is the booking API as the step sees it. *client.Client satisfies it.
type SlotSource interface {
	FetchSlots(ctx context.Context) ([]client.Slot, error)
	CheckAvailability(ctx context.Context, date, timeOfDay string) (bool, error)
}

// State is a point-in-time copy of the step, safe to hand to a renderer.
type State struct {
	Phase        Phase
	Selection    Selection
	Availability client.Availability
	// LoadError is the last failed load; ErrorMessage is its visitor text.
	LoadError    error
	ErrorMessage string
	// Notice survives reloads and is cleared by the next selection.
	Notice string
}

type Option func(*Step)

// WithFailClosed keeps the visitor on the step when the availability check
// itself fails. By default such a failure lets the visitor advance.
func WithFailClosed() Option {
	return func(s *Step) { s.failClosed = true }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Step) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Step is safe for concurrent use. Every network call runs under the step's
// own context, which Close cancels.
type Step struct {
	src        SlotSource
	next       func(Selection)
	failClosed bool
	logger     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	phase  Phase
	sel    Selection
	avail  client.Availability
	err    error
	notice string
	// gen is bumped by every Load and by Close; only the newest load may
	// write its result.
	gen    uint64
	closed bool
}

// NewStep builds a step in the loading phase. next is called once, outside
// any lock, when the visitor advances.
func NewStep(parent context.Context, src SlotSource, next func(Selection), opts ...Option) *Step {
	ctx, cancel := context.WithCancel(parent)
	s := &Step{
		src:    src,
		next:   next,
		logger: zap.NewNop(),
		ctx:    ctx,
		cancel: cancel,
		phase:  PhaseLoading,
		avail:  client.Availability{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the slot list and rebuilds the availability map. It is also
// the manual retry after a failure. A selection that is no longer offered
// is dropped. Once the step has advanced it returns ErrNotReady.
func (s *Step) Load() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.phase == PhaseAdvanced {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.gen++
	gen := s.gen
	s.phase = PhaseLoading
	s.mu.Unlock()

	slots, err := s.src.FetchSlots(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if gen != s.gen {
		s.logger.Debug("discarding stale slot load", zap.Uint64("generation", gen))
		return err
	}

	if err != nil {
		s.phase = PhaseError
		s.err = err
		s.logger.Warn("failed to load slots",
			zap.Error(err),
			zap.Stringer("kind", client.KindOf(err)),
		)
		return err
	}

	s.avail = client.GroupByDate(slots)
	s.err = nil
	s.phase = PhaseReady

	if s.sel.Date != "" && !s.avail.HasDate(s.sel.Date) {
		s.sel = Selection{}
	} else if s.sel.Time != "" && !s.avail.Has(s.sel.Date, s.sel.Time) {
		s.sel.Time = ""
	}

	s.logger.Debug("slots loaded",
		zap.Int("slots", len(slots)),
		zap.Int("dates", len(s.avail)),
	)
	return nil
}

// SelectDate picks a date and clears any chosen time.
func (s *Step) SelectDate(date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(); err != nil {
		return err
	}
	if !s.avail.HasDate(date) {
		return ErrDateNotOffered
	}
	s.sel = Selection{Date: date}
	s.notice = ""
	return nil
}

func (s *Step) SelectTime(clock string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(); err != nil {
		return err
	}
	if s.sel.Date == "" {
		return ErrNoDate
	}
	if !s.avail.Has(s.sel.Date, clock) {
		return ErrTimeNotOffered
	}
	s.sel.Time = clock
	s.notice = ""
	return nil
}

// Advance re-checks the selected slot and, if it is still free, hands the
// selection to next. It reports whether the step advanced.
//
// A slot reported as taken, or a check answered with a server or
// application error envelope, leaves the step ready with NoticeSlotTaken and
// triggers a reload. A check that cannot reach the server or parse its
// reply advances anyway unless the step was built WithFailClosed, in which
// case it stays ready and returns an error wrapping ErrCheckUnverified.
func (s *Step) Advance() (bool, error) {
	s.mu.Lock()
	if err := s.inputAllowed(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !s.sel.Complete() {
		s.mu.Unlock()
		return false, ErrIncomplete
	}
	sel := s.sel
	gen := s.gen
	s.phase = PhaseValidating
	s.mu.Unlock()

	available, err := s.src.CheckAvailability(s.ctx, sel.Date, sel.Time)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if gen != s.gen || s.phase != PhaseValidating {
		s.mu.Unlock()
		return false, ErrSuperseded
	}

	if answeredTaken(err) {
		s.logger.Info("availability check answered with an error envelope",
			zap.Error(err),
			zap.Stringer("kind", client.KindOf(err)),
		)
		available, err = false, nil
	}

	switch {
	case err != nil && s.failClosed:
		s.phase = PhaseReady
		s.notice = NoticeCheckFailed
		s.mu.Unlock()
		s.logger.Warn("availability check failed, staying on step", zap.Error(err))
		return false, errors.Join(ErrCheckUnverified, err)

	case err != nil:
		s.logger.Warn("availability check failed, advancing anyway",
			zap.Error(err),
			zap.String("date", sel.Date),
			zap.String("time", sel.Time),
		)

	case !available:
		s.phase = PhaseReady
		s.notice = NoticeSlotTaken
		s.mu.Unlock()
		s.logger.Info("selected slot was taken", zap.String("date", sel.Date), zap.String("time", sel.Time))
		if lerr := s.Load(); lerr != nil && !errors.Is(lerr, ErrClosed) {
			s.logger.Warn("reload after taken slot failed", zap.Error(lerr))
		}
		return false, nil
	}

	s.phase = PhaseAdvanced
	s.mu.Unlock()

	if s.next != nil {
		s.next(sel)
	}
	return true, nil
}

// answeredTaken reports whether the check endpoint replied with a JSON error
// envelope, which counts as the slot not being available.
func answeredTaken(err error) bool {
	switch client.KindOf(err) {
	case client.KindServer, client.KindApplication:
		return true
	default:
		return false
	}
}

// Close cancels in-flight requests. Results that arrive afterwards are
// dropped and every later call returns ErrClosed.
func (s *Step) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.gen++
	s.mu.Unlock()
	s.cancel()
}

func (s *Step) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:        s.phase,
		Selection:    s.sel,
		Availability: s.avail.Clone(),
		LoadError:    s.err,
		Notice:       s.notice,
	}
	if s.err != nil {
		st.ErrorMessage = userMessage(s.err)
	}
	return st
}

func (s *Step) inputAllowed() error {
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseReady {
		return ErrNotReady
	}
	return nil
}

func userMessage(err error) string {
	if cerr, ok := client.AsError(err); ok {
		return cerr.UserMessage()
	}
	return genericLoadMessage
}
