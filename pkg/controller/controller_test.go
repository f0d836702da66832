package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/engine"
	"github.com/arnavshah/shiftboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory backend keyed by week start.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	shifts    []models.ShiftAssignment
	staff     []models.StaffMember
	caller    int64
	fetches   []string
	creates   int
	rosterErr error
	weekErr   error
	gates     map[string]chan struct{}
}

func newMemStore(caller int64) *memStore {
	return &memStore{
		nextID: 100,
		caller: caller,
		staff:  []models.StaffMember{{ID: 7, FullName: "Staff Seven"}, {ID: 9, FullName: "Staff Nine"}},
		gates:  map[string]chan struct{}{},
	}
}

func (m *memStore) FetchWeek(ctx context.Context, weekStart string) (*models.WeekResponse, error) {
	m.mu.Lock()
	gate := m.gates[weekStart]
	m.fetches = append(m.fetches, weekStart)
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.weekErr != nil {
		return nil, m.weekErr
	}
	start, _ := time.Parse("2006-01-02", weekStart)
	end := start.AddDate(0, 0, 7)
	out := &models.WeekResponse{StartDate: weekStart, Shifts: []models.ShiftAssignment{}}
	for _, s := range m.shifts {
		d, _ := time.Parse("2006-01-02", s.ShiftDate)
		if !d.Before(start) && d.Before(end) {
			out.Shifts = append(out.Shifts, s)
		}
	}
	return out, nil
}

func (m *memStore) FetchStaffRoster(ctx context.Context) (*models.RosterResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rosterErr != nil {
		return nil, m.rosterErr
	}
	return &models.RosterResponse{Staff: m.staff}, nil
}

func (m *memStore) CreateAssignment(ctx context.Context, date, slot string, staffID *int64) (*models.ShiftAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	id := m.caller
	if staffID != nil {
		id = *staffID
	}
	m.nextID++
	a := models.ShiftAssignment{ID: m.nextID, ShiftDate: date, ShiftName: slot, StaffID: id}
	m.shifts = append(m.shifts, a)
	return &a, nil
}

func (m *memStore) DeleteAssignment(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.shifts {
		if s.ID == id {
			m.shifts = append(m.shifts[:i], m.shifts[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "shift not found"}
}

func (m *memStore) gate(week string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[week] = ch
	return ch
}

func clock(iso string) func() time.Time {
	t, _ := time.ParseInLocation("2006-01-02", iso, time.Local)
	return func() time.Time { return t.Add(9 * time.Hour) }
}

type statusLog struct {
	mu   sync.Mutex
	msgs []string
}

func (s *statusLog) add(msg string) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
}

func (s *statusLog) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

func TestScenarioA_StaffClaimsOpenSlot(t *testing.T) {
	store := newMemStore(7)
	status := &statusLog{}
	viewer := models.Viewer{ID: 7, Role: models.RoleStaff}
	c := New(store, viewer, WithClock(clock("2024-06-03")), WithStatus(status.add))

	require.NoError(t, c.Load(context.Background()))
	board := c.Board()
	assert.Equal(t, "2024-06-03", board.Week.ISO())
	assert.Equal(t, engine.CellOpen, board.Cell("2024-06-05", "14:00").State)
	assert.Nil(t, board.Roster, "staff never load the roster")

	require.NoError(t, c.Claim(context.Background(), "2024-06-05", "14:00"))

	board = c.Board()
	cell := board.Cell("2024-06-05", "14:00")
	require.Len(t, cell.Entries, 1)
	assert.Equal(t, int64(7), cell.Entries[0].Assignment.StaffID)
	assert.Equal(t, engine.CellViewerAssigned, cell.State)
	assert.Equal(t, "You're scheduled", cell.Claim.Label)
	assert.True(t, cell.Claim.Disabled)
	assert.Contains(t, status.all(), "Shift assigned for 2024-06-05.")
	assert.Equal(t, []string{"2024-06-03", "2024-06-03"}, store.fetches, "mutation reloads the whole week")

	assert.ErrorIs(t, c.Claim(context.Background(), "2024-06-05", "14:00"), engine.ErrAlreadyScheduled)
	assert.Equal(t, 1, store.creates)
}

func TestScenarioB_ManagerInvalidStaffID(t *testing.T) {
	store := newMemStore(1)
	status := &statusLog{}
	c := New(store, models.Viewer{ID: 1, Role: models.RoleManager}, WithClock(clock("2024-06-03")), WithStatus(status.add))
	require.NoError(t, c.Load(context.Background()))
	fetches := len(store.fetches)

	c.SetInput("2024-06-05", "14:00", "abc")
	err := c.AssignFromInput(context.Background(), "2024-06-05", "14:00")
	assert.EqualError(t, err, "Enter a valid staff ID")
	assert.Zero(t, store.creates)
	assert.Len(t, store.fetches, fetches, "no request sent")
	assert.Equal(t, "Enter a valid staff ID", c.Board().Error)
	assert.Equal(t, "Enter a valid staff ID", status.all()[len(status.all())-1])

	c.SetInput("2024-06-05", "14:00", "")
	assert.EqualError(t, c.AssignFromInput(context.Background(), "2024-06-05", "14:00"), "Enter a staff ID before assigning this shift.")

	c.SetInput("2024-06-05", "14:00", "9")
	require.NoError(t, c.AssignFromInput(context.Background(), "2024-06-05", "14:00"))
	board := c.Board()
	assert.Equal(t, "", board.Input("2024-06-05", "14:00"), "input clears after a successful assign")
	assert.Empty(t, board.Error)
	require.Len(t, board.Cell("2024-06-05", "14:00").Entries, 1)
	assert.Equal(t, int64(9), board.Cell("2024-06-05", "14:00").Entries[0].Assignment.StaffID)
	assert.Len(t, board.Roster, 2)
}

func TestScenarioC_ManagerRemovesOthersAssignment(t *testing.T) {
	store := newMemStore(1)
	store.shifts = []models.ShiftAssignment{{ID: 55, ShiftDate: "2024-06-05", ShiftName: "14:00", StaffID: 9}}
	c := New(store, models.Viewer{ID: 1, Role: models.RoleManager}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))

	cell := c.Board().Cell("2024-06-05", "14:00")
	require.Len(t, cell.Entries, 1)
	require.NotNil(t, cell.Entries[0].Remove)

	require.NoError(t, c.Remove(context.Background(), cell.Entries[0].Assignment))
	assert.Empty(t, c.Board().Cell("2024-06-05", "14:00").Entries)
}

func TestScenarioD_WeekNavigation(t *testing.T) {
	store := newMemStore(7)
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.NextWeek(context.Background()))
	assert.Equal(t, "2024-06-10", c.Week().ISO())
	require.NoError(t, c.PreviousWeek(context.Background()))
	require.NoError(t, c.PreviousWeek(context.Background()))
	assert.Equal(t, "2024-05-27", c.Week().ISO())
	assert.Equal(t, "2024-05-27", c.Board().RangeStart(), "past weeks are shown unclamped")

	require.NoError(t, c.NextWeek(context.Background()))
	assert.Equal(t, "2024-06-03", c.Week().ISO())

	require.NoError(t, c.Today(context.Background()))
	assert.Equal(t, "2024-06-03", c.Week().ISO())
	assert.Equal(t, "2024-06-03", store.fetches[len(store.fetches)-1], "today on the current week refetches")
}

func TestClampedWeekFetchesSpillover(t *testing.T) {
	store := newMemStore(7)
	store.shifts = []models.ShiftAssignment{
		{ID: 1, ShiftDate: "2024-06-10", ShiftName: "10:00", StaffID: 9},
	}
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-05")))
	require.NoError(t, c.Load(context.Background()))

	board := c.Board()
	assert.Equal(t, "2024-06-05", board.RangeStart())
	assert.Equal(t, "2024-06-11", board.RangeEnd())
	assert.ElementsMatch(t, []string{"2024-06-03", "2024-06-10"}, store.fetches)
	assert.Len(t, board.Cell("2024-06-10", "10:00").Entries, 1)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	store := newMemStore(7)
	store.shifts = []models.ShiftAssignment{
		{ID: 1, ShiftDate: "2024-06-12", ShiftName: "10:00", StaffID: 9},
		{ID: 2, ShiftDate: "2024-06-19", ShiftName: "11:00", StaffID: 9},
	}
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))

	gate := store.gate("2024-06-10")
	c.ShiftWeek(1)
	slow := make(chan error, 1)
	go func() { slow <- c.Load(context.Background()) }()

	// wait for the slow fetch to be in flight
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.fetches) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.NextWeek(context.Background()))
	assert.Equal(t, "2024-06-17", c.Week().ISO())

	close(gate)
	assert.ErrorIs(t, <-slow, ErrStaleWeek)

	board := c.Board()
	assert.Len(t, board.Cell("2024-06-19", "11:00").Entries, 1)
	assert.Empty(t, board.Cell("2024-06-12", "10:00").Entries, "stale week never overwrites the selected one")
}

func TestRosterFailureIsNotFatal(t *testing.T) {
	store := newMemStore(1)
	store.rosterErr = &client.APIError{Status: 403, Message: "insufficient permissions"}
	status := &statusLog{}
	c := New(store, models.Viewer{ID: 1, Role: models.RoleAdmin}, WithClock(clock("2024-06-03")), WithStatus(status.add))

	require.NoError(t, c.Load(context.Background()))
	board := c.Board()
	assert.NotNil(t, board.Roster)
	assert.Empty(t, board.Roster)
	assert.True(t, board.Loaded)
	assert.Equal(t, "insufficient permissions", board.Error)
	assert.Equal(t, []string{"insufficient permissions"}, status.all())
}

func TestLoadFailureSurfacesAndRecovers(t *testing.T) {
	store := newMemStore(7)
	store.weekErr = &client.APIError{Status: 500}
	status := &statusLog{}
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")), WithStatus(status.add))

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Unable to load schedule", c.Board().Error)
	assert.False(t, c.Board().Loading)
	assert.Equal(t, []string{"Unable to load schedule"}, status.all())

	store.mu.Lock()
	store.weekErr = nil
	store.mu.Unlock()
	require.NoError(t, c.Load(context.Background()))
	assert.Empty(t, c.Board().Error)
}

func TestNonStaffViewerSeesNoGrid(t *testing.T) {
	store := newMemStore(3)
	c := New(store, models.Viewer{ID: 3, Role: models.RoleCustomer}, WithClock(clock("2024-06-03")))
	assert.ErrorIs(t, c.Load(context.Background()), engine.ErrNotStaff)
	board := c.Board()
	assert.Empty(t, board.Days)
	assert.Empty(t, board.Slots)
	assert.Empty(t, store.fetches)
}

func TestSetSessionReloadsForNewViewer(t *testing.T) {
	store := newMemStore(3)
	c := New(store, models.Viewer{ID: 3, Role: models.RoleCustomer}, WithClock(clock("2024-06-03")))
	require.Error(t, c.Load(context.Background()))

	other := newMemStore(1)
	require.NoError(t, c.SetSession(context.Background(), models.Viewer{ID: 1, Role: models.RoleManager}, other))
	assert.Len(t, other.fetches, 1)
	assert.Len(t, c.Board().Roster, 2)
	assert.Len(t, c.Board().Slots, 12)
}

func TestUnknownSlotsSurface(t *testing.T) {
	store := newMemStore(7)
	store.shifts = []models.ShiftAssignment{{ID: 1, ShiftDate: "2024-06-04", ShiftName: "morning", StaffID: 9}}
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))
	require.Len(t, c.Board().Unknown, 1)
	assert.Equal(t, "morning", c.Board().Unknown[0].ShiftName)
}

func TestRemoveFailureKeepsGridInteractive(t *testing.T) {
	store := newMemStore(7)
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))

	ghost := models.ShiftAssignment{ID: 999, ShiftDate: "2024-06-05", ShiftName: "14:00", StaffID: 7}
	err := c.Remove(context.Background(), ghost)
	var mErr *engine.MutationError
	require.True(t, errors.As(err, &mErr))
	assert.Equal(t, "shift not found", c.Board().Error)

	require.NoError(t, c.Claim(context.Background(), "2024-06-05", "14:00"))
}

func TestLoadingClearsWhenSessionLosesStaffRole(t *testing.T) {
	store := newMemStore(7)
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))

	gate := store.gate("2024-06-03")
	slow := make(chan error, 1)
	go func() { slow <- c.Load(context.Background()) }()
	require.Eventually(t, func() bool { return c.Board().Loading }, time.Second, 5*time.Millisecond)

	err := c.SetSession(context.Background(), models.Viewer{ID: 3, Role: models.RoleCustomer}, nil)
	assert.ErrorIs(t, err, engine.ErrNotStaff)
	assert.True(t, c.Board().Loading, "first load still in flight")

	close(gate)
	assert.ErrorIs(t, <-slow, ErrStaleWeek)
	board := c.Board()
	assert.False(t, board.Loading)
	assert.False(t, board.Loaded)
	assert.Equal(t, engine.ErrNotStaff.Error(), board.Error)
}

func TestEditingInputClearsCellError(t *testing.T) {
	store := newMemStore(1)
	c := New(store, models.Viewer{ID: 1, Role: models.RoleManager}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))

	c.SetInput("2024-06-05", "14:00", "abc")
	require.Error(t, c.AssignFromInput(context.Background(), "2024-06-05", "14:00"))
	assert.Equal(t, "Enter a valid staff ID", c.Board().Cell("2024-06-05", "14:00").Error)

	c.SetInput("2024-06-05", "14:00", "abc")
	assert.NotEmpty(t, c.Board().Cell("2024-06-05", "14:00").Error, "unchanged input keeps the error")

	c.SetInput("2024-06-05", "14:00", "9")
	assert.Empty(t, c.Board().Cell("2024-06-05", "14:00").Error)
}

// blockingStore holds CreateAssignment until release is closed.
type blockingStore struct {
	*memStore
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) CreateAssignment(ctx context.Context, date, slot string, staffID *int64) (*models.ShiftAssignment, error) {
	close(b.started)
	<-b.release
	return b.memStore.CreateAssignment(ctx, date, slot, staffID)
}

func TestBoardReportsMutationInFlight(t *testing.T) {
	store := &blockingStore{memStore: newMemStore(7), started: make(chan struct{}), release: make(chan struct{})}
	c := New(store, models.Viewer{ID: 7, Role: models.RoleStaff}, WithClock(clock("2024-06-03")))
	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.Board().Mutating)

	done := make(chan error, 1)
	go func() { done <- c.Claim(context.Background(), "2024-06-05", "14:00") }()
	<-store.started
	board := c.Board()
	assert.True(t, board.Mutating)
	assert.Equal(t, "Claiming...", board.Cell("2024-06-05", "14:00").Claim.Label)

	close(store.release)
	require.NoError(t, <-done)
	assert.False(t, c.Board().Mutating)
}
