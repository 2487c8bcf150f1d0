package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldkit/jobwalk/internal/catalog"
	"github.com/fieldkit/jobwalk/internal/dispo"
	"github.com/fieldkit/jobwalk/internal/flightplan"
	"github.com/fieldkit/jobwalk/internal/geometry"
)

// Record is a persisted session: the state plus identity and timestamps.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	State     *State    `json:"state"`
}

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	CreateSession(ctx context.Context, rec *Record) error
	GetSession(ctx context.Context, id string) (*Record, error)
	ListSessions(ctx context.Context) ([]*Record, error)
	UpdateSession(ctx context.Context, rec *Record) error
	DeleteSession(ctx context.Context, id string) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager runs the load, mutate, recompute, save cycle for sessions. All
// mutating operations recompute before persisting, so stored state never
// disagrees with the answer set it derives from.
type Manager struct {
	store Store
	cat   *catalog.Catalog
	clock Clock
}

// NewManager creates a Manager over the given store and active catalog.
func NewManager(store Store, cat *catalog.Catalog) *Manager {
	return &Manager{store: store, cat: cat, clock: realClock{}}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, cat *catalog.Catalog, clock Clock) *Manager {
	return &Manager{store: store, cat: cat, clock: clock}
}

// Catalog returns the catalog the manager computes against.
func (m *Manager) Catalog() *catalog.Catalog { return m.cat }

// Create starts a new session for an address. The visit date defaults to
// today and the initial recompute runs against the empty answer set.
func (m *Manager) Create(ctx context.Context, address, homeowner string) (*Record, error) {
	now := m.clock.Now()
	st := NewState()
	st.Job.Address = address
	st.Job.Homeowner = homeowner
	st.Job.Date = now.Format("2006-01-02")
	st.Recompute(m.cat, now)

	rec := &Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		State:     st,
	}
	if err := m.store.CreateSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return rec, nil
}

// Get loads one session and normalizes its state.
func (m *Manager) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.State.Normalize()
	return rec, nil
}

// List returns all sessions, newest first.
func (m *Manager) List(ctx context.Context) ([]*Record, error) {
	recs, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		rec.State.Normalize()
	}
	return recs, nil
}

// Delete removes a session permanently.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteSession(ctx, id)
}

// mutate loads a session, applies fn, recomputes, and persists. fn
// returning an error aborts without writing.
func (m *Manager) mutate(ctx context.Context, id string, fn func(*State) error) (*Record, error) {
	rec, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(rec.State); err != nil {
		return nil, err
	}
	now := m.clock.Now()
	rec.State.Recompute(m.cat, now)
	rec.UpdatedAt = now
	if err := m.store.UpdateSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return rec, nil
}

// SetJob updates the handoff metadata fields.
func (m *Manager) SetJob(ctx context.Context, id string, job Job) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		s.Job = job
		return nil
	})
}

// Answer records one answer (empty value clears it) and recomputes.
func (m *Manager) Answer(ctx context.Context, id, questionID, value string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		return s.SetAnswer(m.cat, questionID, value)
	})
}

// ResetAnswers clears the answer set, keeping accumulated rule notes.
func (m *Manager) ResetAnswers(ctx context.Context, id string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		s.ResetAnswers()
		return nil
	})
}

// ResetNotes drops accumulated rule notes; the recompute re-fires the
// rules that still match.
func (m *Manager) ResetNotes(ctx context.Context, id string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		s.ResetNotes()
		return nil
	})
}

// Recompute forces a full derivation pass with no state change first.
func (m *Manager) Recompute(ctx context.Context, id string) (*Record, error) {
	return m.mutate(ctx, id, func(*State) error { return nil })
}

// SetPerimeterRect switches the session to rectangle mode with the given
// dimensions in feet.
func (m *Manager) SetPerimeterRect(ctx context.Context, id string, length, width, height float64) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		if length <= 0 || width <= 0 {
			return fmt.Errorf("rectangle dimensions must be positive")
		}
		s.Perimeter.Mode = "rect"
		s.Perimeter.Rect = Rect{L: length, W: width, H: height}
		s.Perimeter.Recalculate()
		return nil
	})
}

// SetPerimeterWalk switches the session to walk mode with the given
// segment list.
func (m *Manager) SetPerimeterWalk(ctx context.Context, id string, segments []geometry.Segment) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		if len(segments) == 0 {
			return fmt.Errorf("walk needs at least one segment")
		}
		for i, seg := range segments {
			if seg.Len <= 0 {
				return fmt.Errorf("segment %d: length must be positive", i+1)
			}
		}
		s.Perimeter.Mode = "walk"
		s.Perimeter.Segments = segments
		s.Perimeter.Recalculate()
		return nil
	})
}

// AutoFill back-fills measured quantities and default add-ons.
func (m *Manager) AutoFill(ctx context.Context, id string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		return s.AutoFill(m.cat)
	})
}

// SetPrompt toggles one field checklist item.
func (m *Manager) SetPrompt(ctx context.Context, id, promptID string, done bool) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		return s.SetPrompt(promptID, done)
	})
}

// ToggleAddOn adds or removes an add-on line on one flight plan.
func (m *Manager) ToggleAddOn(ctx context.Context, id, solutionID, addOnID string, on bool) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		return s.ToggleAddOn(m.cat, solutionID, addOnID, on)
	})
}

// SetPlanNotes replaces the free-form notes on one flight plan.
func (m *Manager) SetPlanNotes(ctx context.Context, id, solutionID, notes string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		plan, ok := s.FlightPlans[solutionID]
		if !ok {
			return fmt.Errorf("no flight plan for solution %q", solutionID)
		}
		plan.Notes = notes
		return nil
	})
}

// DispoUpdate carries one disposition change. Nil fields are untouched;
// RegenNotes/RegenPlan force the template text over any edits.
type DispoUpdate struct {
	Status         *string
	FollowupDate   *string
	FollowupMethod *string
	Notes          *string
	Plan           *string
	RegenNotes     bool
	RegenPlan      bool
}

// SetDisposition applies a disposition update. Template regeneration
// only overwrites edited text when explicitly forced.
func (m *Manager) SetDisposition(ctx context.Context, id string, upd DispoUpdate) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		if upd.Status != nil {
			s.Dispo.Status = dispo.ParseStatus(*upd.Status)
		}
		if upd.FollowupDate != nil {
			s.Dispo.FollowupDate = *upd.FollowupDate
		}
		if upd.FollowupMethod != nil {
			s.Dispo.FollowupMethod = *upd.FollowupMethod
		}
		if upd.Notes != nil {
			s.Dispo.Notes = *upd.Notes
		}
		if upd.Plan != nil {
			s.Dispo.Plan = *upd.Plan
		}
		s.RegenerateDispo(m.cat, m.clock.Now(), upd.RegenNotes, upd.RegenPlan)
		return nil
	})
}

// AddPlanLine appends a line item to one flight plan unless a line with
// the same item name already exists.
func (m *Manager) AddPlanLine(ctx context.Context, id, solutionID, item string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		plan, ok := s.FlightPlans[solutionID]
		if !ok {
			return fmt.Errorf("no flight plan for solution %q", solutionID)
		}
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("item name required")
		}
		flightplan.AddLineIfMissing(plan, item)
		return nil
	})
}

// RemovePlanLine drops all lines matching the item name from one flight plan.
func (m *Manager) RemovePlanLine(ctx context.Context, id, solutionID, item string) (*Record, error) {
	return m.mutate(ctx, id, func(s *State) error {
		plan, ok := s.FlightPlans[solutionID]
		if !ok {
			return fmt.Errorf("no flight plan for solution %q", solutionID)
		}
		flightplan.RemoveLineByItem(plan, item)
		return nil
	})
}

// Import replaces a session's state with one parsed from an export
// envelope, then recomputes against the active catalog.
func (m *Manager) Import(ctx context.Context, id string, data []byte) (*Record, error) {
	st, err := ImportState(data)
	if err != nil {
		return nil, err
	}
	return m.mutate(ctx, id, func(s *State) error {
		*s = *st
		return nil
	})
}

// ImportNew creates a brand-new session from an export envelope.
func (m *Manager) ImportNew(ctx context.Context, data []byte) (*Record, error) {
	st, err := ImportState(data)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	st.Recompute(m.cat, now)
	rec := &Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		State:     st,
	}
	if err := m.store.CreateSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return rec, nil
}

// Export serializes one session's state into the portable envelope.
func (m *Manager) Export(ctx context.Context, id string) ([]byte, error) {
	rec, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Export(rec.State, m.cat.Model.Version, m.clock.Now())
}
