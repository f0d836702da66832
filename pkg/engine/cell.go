package engine

import (
	"strings"

	"github.com/arnavshah/shiftboard/pkg/grid"
	"github.com/arnavshah/shiftboard/pkg/models"
)

type CellState int

const (
	CellOpen CellState = iota
	CellAssigned
	CellViewerAssigned
)

func (s CellState) String() string {
	switch s {
	case CellAssigned:
		return "assigned"
	case CellViewerAssigned:
		return "viewer-assigned"
	default:
		return "open"
	}
}

// StateOf derives the state of one cell from the lookup and the viewer.
func StateOf(viewer models.Viewer, lookup grid.Lookup, date, slot string) CellState {
	entries := lookup.Cell(date, slot)
	if len(entries) == 0 {
		return CellOpen
	}
	if lookup.HasStaff(date, slot, viewer.ID) {
		return CellViewerAssigned
	}
	return CellAssigned
}

// Button is one control offered by a cell.
type Button struct {
	Label    string
	Disabled bool
}

// Entry is one assignment listed in a cell.
type Entry struct {
	Assignment models.ShiftAssignment
	Label      string  // "Name (role)"
	Remove     *Button // nil when the viewer cannot remove it
}

// CellView is everything a renderer needs for one (date, slot) cell.
type CellView struct {
	Date    string
	Slot    string
	State   CellState
	Summary string
	Entries []Entry

	// Claim is offered to plain staff only.
	Claim *Button
	// Assign and AssignMe are offered to managers only; Assign reads the
	// per-cell staff id input.
	Assign   *Button
	AssignMe *Button

	Pending bool
	Error   string
}

const noOneScheduled = "No one scheduled yet"

// Describe renders the affordances of one cell. It is a pure function of its
// inputs and is recomputed on every render.
func Describe(viewer models.Viewer, lookup grid.Lookup, states *RequestStates, date, slot string) CellView {
	if states == nil {
		states = NewRequestStates()
	}
	entries := lookup.Cell(date, slot)
	key := ClaimKey(date, slot)
	req := states.Get(key)
	pending := req.Status == StatusPending

	view := CellView{
		Date:    date,
		Slot:    slot,
		State:   StateOf(viewer, lookup, date, slot),
		Summary: summarize(entries),
		Pending: pending,
	}
	if req.Status == StatusError {
		view.Error = req.Err
	}

	if !viewer.IsStaff() {
		return view
	}

	for _, a := range entries {
		e := Entry{Assignment: a, Label: entryLabel(a)}
		if viewer.CanManageAll() || viewer.Owns(a) {
			removing := states.Pending(RemoveKey(a.ID))
			label := "Remove"
			if removing {
				label = "Removing..."
			}
			e.Remove = &Button{Label: label, Disabled: removing}
		}
		view.Entries = append(view.Entries, e)
	}

	if viewer.CanManageAll() {
		label := "Assign"
		if pending {
			label = "Assigning..."
		}
		view.Assign = &Button{Label: label, Disabled: pending}
		view.AssignMe = &Button{Label: "Assign Me", Disabled: pending}
		return view
	}

	scheduled := view.State == CellViewerAssigned
	label := "Claim this shift"
	switch {
	case scheduled:
		label = "You're scheduled"
	case pending:
		label = "Claiming..."
	}
	view.Claim = &Button{Label: label, Disabled: scheduled || pending}
	return view
}

func summarize(entries []models.ShiftAssignment) string {
	if len(entries) == 0 {
		return noOneScheduled
	}
	names := make([]string, len(entries))
	for i, a := range entries {
		names[i] = a.DisplayName()
	}
	return strings.Join(names, ", ")
}

func entryLabel(a models.ShiftAssignment) string {
	role := a.Role
	if role == "" {
		role = "staff"
	}
	return a.DisplayName() + " (" + role + ")"
}
