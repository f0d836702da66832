package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/engine"
	"github.com/arnavshah/shiftboard/pkg/grid"
	"github.com/arnavshah/shiftboard/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStaleWeek is returned by Load when the selected week or session changed
// while the fetch was in flight; its result was discarded.
var ErrStaleWeek = errors.New("controller: discarded result for a week no longer selected")

// Store is everything the controller needs from the schedule backend.
type Store interface {
	engine.Store
	FetchWeek(ctx context.Context, weekStart string) (*models.WeekResponse, error)
	FetchStaffRoster(ctx context.Context) (*models.RosterResponse, error)
}

// SummaryStore is implemented by stores that expose the weekly summary.
type SummaryStore interface {
	Summary(ctx context.Context, weekStart string) (*models.WeekSummary, error)
}

type Controller struct {
	engine *engine.Engine
	logger *zap.Logger
	now    func() time.Time
	status engine.StatusFunc

	mu         sync.Mutex
	store      Store
	viewer     models.Viewer
	week       calendar.Week
	generation uint64
	lookup     grid.Lookup
	roster     []models.StaffMember
	inflight   int // Load calls not yet returned
	loaded     bool
	banner     string
	serverWeek string
	inputs     map[string]string
}

type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithStatus sets the shared status channel.
func WithStatus(fn engine.StatusFunc) Option {
	return func(c *Controller) {
		if fn != nil {
			c.status = fn
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a controller showing the week containing today.
func New(store Store, viewer models.Viewer, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		viewer: viewer,
		now:    time.Now,
		status: func(string) {},
		logger: zap.NewNop(),
		inputs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.week = calendar.WeekOf(c.now())
	c.engine = engine.New(sessionStore{c},
		engine.WithStatus(c.status),
		engine.WithReload(c.Load),
		engine.WithLogger(c.logger))
	return c
}

// sessionStore routes engine calls to whatever store the current session uses.
type sessionStore struct{ c *Controller }

func (s sessionStore) CreateAssignment(ctx context.Context, date, slot string, staffID *int64) (*models.ShiftAssignment, error) {
	return s.c.currentStore().CreateAssignment(ctx, date, slot, staffID)
}

func (s sessionStore) DeleteAssignment(ctx context.Context, id int64) error {
	return s.c.currentStore().DeleteAssignment(ctx, id)
}

func (c *Controller) currentStore() Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// Viewer returns the signed-in viewer.
func (c *Controller) Viewer() models.Viewer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewer
}

// Week returns the selected week.
func (c *Controller) Week() calendar.Week {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.week
}

// SetSession swaps the viewer and store (a new token) and reloads.
// In-flight results of the previous session are discarded.
func (c *Controller) SetSession(ctx context.Context, viewer models.Viewer, store Store) error {
	c.mu.Lock()
	c.viewer = viewer
	if store != nil {
		c.store = store
	}
	c.generation++
	c.lookup = nil
	c.roster = nil
	c.loaded = false
	c.mu.Unlock()
	return c.Load(ctx)
}

// SelectWeek moves the selection to the week containing t without loading.
// It returns true when the selection changed.
func (c *Controller) SelectWeek(t time.Time) bool {
	target := calendar.WeekOf(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.week.Equal(target) {
		return false
	}
	c.week = target
	c.generation++
	return true
}

// ShiftWeek moves the selection by delta weeks without loading.
func (c *Controller) ShiftWeek(delta int) calendar.Week {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.week = calendar.WeekOf(calendar.AddDays(c.week.Start, delta*calendar.DaysPerWeek))
	c.generation++
	return c.week
}

// NextWeek selects the following week and loads it.
func (c *Controller) NextWeek(ctx context.Context) error {
	c.ShiftWeek(1)
	return c.Load(ctx)
}

// PreviousWeek selects the preceding week and loads it. Navigating into
// fully elapsed weeks is allowed.
func (c *Controller) PreviousWeek(ctx context.Context) error {
	c.ShiftWeek(-1)
	return c.Load(ctx)
}

// Today jumps to the week containing today, or refreshes if already there.
func (c *Controller) Today(ctx context.Context) error {
	c.SelectWeek(c.now())
	return c.Load(ctx)
}

type fetchResult struct {
	week   *models.WeekResponse
	extra  *models.WeekResponse
	roster *models.RosterResponse
	rErr   error
}

// Load fetches the selected week (plus the roster for managers) and rebuilds
// the grid. A result for a week that is no longer selected is discarded and
// ErrStaleWeek returned. Errors are reported on the status channel and the
// banner; they never leave the grid unusable.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	viewer := c.viewer
	store := c.store
	week := c.week
	gen := c.generation
	if !viewer.IsStaff() {
		c.banner = engine.ErrNotStaff.Error()
		c.mu.Unlock()
		return engine.ErrNotStaff
	}
	c.inflight++
	c.banner = ""
	c.mu.Unlock()

	today := c.now()
	clamped := calendar.Clamped(week, today)
	res, err := c.fetch(ctx, store, viewer, week, clamped)

	var notices []string
	defer func() {
		for _, msg := range notices {
			c.status(msg)
		}
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if gen != c.generation {
		c.logger.Debug("discarding stale week", zap.String("week", week.ISO()))
		return ErrStaleWeek
	}

	if err != nil {
		msg := client.Message(err, client.MsgLoadSchedule)
		c.banner = msg
		c.logger.Warn("load week failed", zap.String("week", week.ISO()), zap.Error(err))
		notices = append(notices, msg)
		return err
	}

	shifts := res.week.Shifts
	if res.extra != nil {
		shifts = append(append([]models.ShiftAssignment{}, shifts...), res.extra.Shifts...)
	}
	c.lookup = grid.Project(shifts)
	c.loaded = true
	c.serverWeek = normalizeServerWeek(res.week.StartDate, today.Location())
	if c.serverWeek != "" && c.serverWeek != week.ISO() {
		c.logger.Warn("server week differs from selected week",
			zap.String("selected", week.ISO()), zap.String("server", c.serverWeek))
	}

	c.roster = nil
	if viewer.CanManageAll() {
		if res.rErr != nil {
			c.roster = []models.StaffMember{}
			msg := client.Message(res.rErr, client.MsgLoadStaff)
			c.banner = msg
			notices = append(notices, msg)
		} else {
			c.roster = res.roster.Staff
		}
	}

	c.logger.Debug("week loaded", zap.String("week", week.ISO()), zap.Int("shifts", len(shifts)))
	return nil
}

func (c *Controller) fetch(ctx context.Context, store Store, viewer models.Viewer, week calendar.Week, clamped bool) (fetchResult, error) {
	var res fetchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := store.FetchWeek(gctx, week.ISO())
		res.week = w
		return err
	})
	if clamped {
		// the display window spills into next week
		g.Go(func() error {
			w, err := store.FetchWeek(gctx, week.Next().ISO())
			res.extra = w
			return err
		})
	}
	if viewer.CanManageAll() {
		// roster failures leave an empty roster, not a failed load
		g.Go(func() error {
			r, err := store.FetchStaffRoster(ctx)
			res.roster, res.rErr = r, err
			return nil
		})
	}
	err := g.Wait()
	return res, err
}

func normalizeServerWeek(iso string, loc *time.Location) string {
	if iso == "" {
		return ""
	}
	w, err := calendar.ParseWeek(iso, loc)
	if err != nil {
		return ""
	}
	return w.ISO()
}

// Summary loads the weekly hours summary when the store supports it.
func (c *Controller) Summary(ctx context.Context) (*models.WeekSummary, error) {
	c.mu.Lock()
	store := c.store
	week := c.week
	c.mu.Unlock()
	ss, ok := store.(SummaryStore)
	if !ok {
		return nil, errors.New("summary not supported by this store")
	}
	return ss.Summary(ctx, week.ISO())
}
