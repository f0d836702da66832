package engine

import (
	"errors"
	"fmt"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/grid"
	"github.com/arnavshah/shiftboard/pkg/models"
)

var (
	ErrNotStaff         = errors.New("You must be signed in as staff to view scheduling.")
	ErrManagerOnly      = errors.New("Only managers can assign other staff.")
	ErrStaffOnly        = errors.New("Managers assign shifts with Assign or Assign Me.")
	ErrAlreadyScheduled = errors.New("You're already scheduled for this shift.")
	ErrNotOwner         = errors.New("You can only remove your own shifts.")
	ErrUnknownSlot      = errors.New("Unknown shift slot.")
	ErrPending          = errors.New("This shift is already being updated.")
	ErrUnknownIntent    = errors.New("unknown intent")
)

// mutation is the store call an authorized intent resolves to.
type mutation struct {
	date     string
	slot     string
	staffID  *int64 // nil: server assigns the caller
	removeID int64
}

func (m mutation) isRemove() bool { return m.removeID != 0 }

// Authorize checks intent against the viewer's capabilities and the current
// grid without touching the network.
func Authorize(viewer models.Viewer, lookup grid.Lookup, intent Intent) error {
	_, err := resolve(viewer, lookup, intent)
	return err
}

func resolve(viewer models.Viewer, lookup grid.Lookup, intent Intent) (mutation, error) {
	if !viewer.IsStaff() {
		return mutation{}, ErrNotStaff
	}
	switch v := intent.(type) {
	case SelfClaim:
		if viewer.CanManageAll() {
			return mutation{}, ErrStaffOnly
		}
		if err := checkSlot(v.Slot); err != nil {
			return mutation{}, err
		}
		if lookup.HasStaff(v.Date, v.Slot, viewer.ID) {
			return mutation{}, ErrAlreadyScheduled
		}
		return mutation{date: v.Date, slot: v.Slot}, nil

	case ManagerAssign:
		if !viewer.CanManageAll() {
			return mutation{}, ErrManagerOnly
		}
		if err := checkSlot(v.Slot); err != nil {
			return mutation{}, err
		}
		id, err := client.ParseStaffID(v.StaffInput)
		if err != nil {
			return mutation{}, err
		}
		return mutation{date: v.Date, slot: v.Slot, staffID: &id}, nil

	case AssignSelfAsManager:
		if !viewer.CanManageAll() {
			return mutation{}, ErrManagerOnly
		}
		if err := checkSlot(v.Slot); err != nil {
			return mutation{}, err
		}
		m := mutation{date: v.Date, slot: v.Slot}
		if viewer.ID > 0 {
			id := viewer.ID
			m.staffID = &id
		}
		return m, nil

	case Remove:
		if !viewer.CanManageAll() && !viewer.Owns(v.Assignment) {
			return mutation{}, ErrNotOwner
		}
		if v.Assignment.ID <= 0 {
			return mutation{}, fmt.Errorf("%w: assignment id %d", ErrUnknownIntent, v.Assignment.ID)
		}
		return mutation{removeID: v.Assignment.ID}, nil
	}
	return mutation{}, fmt.Errorf("%w: %T", ErrUnknownIntent, intent)
}

func checkSlot(key string) error {
	if _, ok := calendar.SlotByKey(key); !ok {
		return ErrUnknownSlot
	}
	return nil
}
