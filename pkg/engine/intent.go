package engine

import (
	"strconv"

	"github.com/arnavshah/shiftboard/pkg/models"
)

// Intent is one mutation a viewer asks for. The set of implementations is
// closed: SelfClaim, ManagerAssign, AssignSelfAsManager and Remove.
type Intent interface {
	// Key identifies the cell or assignment the intent locks while in flight.
	Key() string
	isIntent()
}

// SelfClaim is a plain staff member booking themselves.
type SelfClaim struct {
	Date string
	Slot string
}

// ManagerAssign books the staff member typed into the cell input.
type ManagerAssign struct {
	Date       string
	Slot       string
	StaffInput string
}

// AssignSelfAsManager is the manager "Assign Me" button.
type AssignSelfAsManager struct {
	Date string
	Slot string
}

// Remove deletes one assignment.
type Remove struct {
	Assignment models.ShiftAssignment
}

func (i SelfClaim) Key() string           { return ClaimKey(i.Date, i.Slot) }
func (i ManagerAssign) Key() string       { return ClaimKey(i.Date, i.Slot) }
func (i AssignSelfAsManager) Key() string { return ClaimKey(i.Date, i.Slot) }
func (i Remove) Key() string              { return RemoveKey(i.Assignment.ID) }

func (SelfClaim) isIntent()           {}
func (ManagerAssign) isIntent()       {}
func (AssignSelfAsManager) isIntent() {}
func (Remove) isIntent()              {}

// ClaimKey is the request-state key of a create on date/slot.
func ClaimKey(date, slot string) string { return "claim-" + date + "-" + slot }

// RemoveKey is the request-state key of a delete of assignment id.
func RemoveKey(id int64) string { return "remove-" + strconv.FormatInt(id, 10) }

// dateOf returns the shift date an intent touches, for status messages.
func dateOf(i Intent) string {
	switch v := i.(type) {
	case SelfClaim:
		return v.Date
	case ManagerAssign:
		return v.Date
	case AssignSelfAsManager:
		return v.Date
	case Remove:
		return v.Assignment.ShiftDate
	}
	return ""
}
