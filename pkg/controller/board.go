package controller

import (
	"context"
	"errors"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/engine"
	"github.com/arnavshah/shiftboard/pkg/grid"
	"github.com/arnavshah/shiftboard/pkg/models"
)

// Board is an immutable snapshot of everything the view renders.
type Board struct {
	Viewer     models.Viewer
	Week       calendar.Week
	Days       []calendar.Day
	Slots      []calendar.Slot
	Lookup     grid.Lookup
	Unknown    []models.ShiftAssignment
	Roster     []models.StaffMember
	Loading    bool
	Loaded     bool
	// Mutating is set while any claim, assign or remove is in flight.
	Mutating   bool
	Error      string
	ServerWeek string

	states *engine.RequestStates
	inputs map[string]string
}

// RangeStart and RangeEnd are the first and last displayed dates.
func (b Board) RangeStart() string {
	if len(b.Days) == 0 {
		return ""
	}
	return b.Days[0].ISO
}

func (b Board) RangeEnd() string {
	if len(b.Days) == 0 {
		return ""
	}
	return b.Days[len(b.Days)-1].ISO
}

// Cell describes one cell for rendering.
func (b Board) Cell(date, slot string) engine.CellView {
	return engine.Describe(b.Viewer, b.Lookup, b.states, date, slot)
}

// Input returns the manager staff id typed for a cell.
func (b Board) Input(date, slot string) string {
	return b.inputs[cellKey(date, slot)]
}

// Board snapshots the current state.
func (c *Controller) Board() Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := Board{
		Viewer:     c.viewer,
		Week:       c.week,
		Lookup:     c.lookup,
		Loading:    c.inflight > 0,
		Loaded:     c.loaded,
		Error:      c.banner,
		ServerWeek: c.serverWeek,
		Mutating:   c.engine.States().AnyPending(),
		states:     c.engine.States(),
		inputs:     make(map[string]string, len(c.inputs)),
	}
	for k, v := range c.inputs {
		b.inputs[k] = v
	}
	if !c.viewer.IsStaff() {
		return b
	}
	b.Days = calendar.DisplayDays(c.week, c.now())
	b.Slots = calendar.Slots()
	b.Unknown = c.lookup.Unknown()
	if c.roster != nil {
		b.Roster = make([]models.StaffMember, len(c.roster))
		copy(b.Roster, c.roster)
	}
	return b
}

func cellKey(date, slot string) string { return date + ":" + slot }

// SetInput records the staff id typed into a cell's manager input. Editing
// the input clears the cell's previous error.
func (c *Controller) SetInput(date, slot, value string) {
	c.mu.Lock()
	key := cellKey(date, slot)
	changed := c.inputs[key] != value
	c.inputs[key] = value
	c.mu.Unlock()
	if changed {
		c.engine.States().Clear(engine.ClaimKey(date, slot))
	}
}

// Dispatch runs intent through the assignment engine against the current
// grid. A successful mutation reloads the week.
func (c *Controller) Dispatch(ctx context.Context, intent engine.Intent) error {
	c.mu.Lock()
	viewer := c.viewer
	lookup := c.lookup
	c.mu.Unlock()

	err := c.engine.Dispatch(ctx, viewer, lookup, intent)
	if err != nil {
		if !errors.Is(err, engine.ErrPending) {
			c.mu.Lock()
			c.banner = c.engine.Banner()
			c.mu.Unlock()
		}
		return err
	}
	if a, ok := intent.(engine.ManagerAssign); ok {
		c.SetInput(a.Date, a.Slot, "")
	}
	return nil
}

// Claim is the plain staff "Claim this shift" button.
func (c *Controller) Claim(ctx context.Context, date, slot string) error {
	return c.Dispatch(ctx, engine.SelfClaim{Date: date, Slot: slot})
}

// AssignFromInput is the manager "Assign" button, reading the cell input.
func (c *Controller) AssignFromInput(ctx context.Context, date, slot string) error {
	c.mu.Lock()
	input := c.inputs[cellKey(date, slot)]
	c.mu.Unlock()
	return c.Dispatch(ctx, engine.ManagerAssign{Date: date, Slot: slot, StaffInput: input})
}

// AssignMe is the manager "Assign Me" button.
func (c *Controller) AssignMe(ctx context.Context, date, slot string) error {
	return c.Dispatch(ctx, engine.AssignSelfAsManager{Date: date, Slot: slot})
}

// Remove deletes an assignment currently on the grid.
func (c *Controller) Remove(ctx context.Context, a models.ShiftAssignment) error {
	return c.Dispatch(ctx, engine.Remove{Assignment: a})
}
