package grid

import (
	"sort"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/models"
)

// Lookup indexes a week's assignments by ISO date then slot key. It is
// rebuilt from scratch on every fetch and never patched.
type Lookup map[string]map[string][]models.ShiftAssignment

// Project groups shifts by (shift_date, shift_name). Every input entry lands
// in exactly one cell, including entries whose slot is not in the catalogue.
// Records missing a date or slot key are kept under the empty key.
func Project(shifts []models.ShiftAssignment) Lookup {
	lookup := make(Lookup)
	for _, s := range shifts {
		day, ok := lookup[s.ShiftDate]
		if !ok {
			day = make(map[string][]models.ShiftAssignment)
			lookup[s.ShiftDate] = day
		}
		day[s.ShiftName] = append(day[s.ShiftName], s)
	}
	for _, day := range lookup {
		for _, cell := range day {
			sortCell(cell)
		}
	}
	return lookup
}

func sortCell(cell []models.ShiftAssignment) {
	sort.SliceStable(cell, func(i, j int) bool {
		if cell[i].StaffName != cell[j].StaffName {
			return cell[i].StaffName < cell[j].StaffName
		}
		return cell[i].ID < cell[j].ID
	})
}

// Cell returns the assignments booked on date in slot. A nil lookup is empty.
func (l Lookup) Cell(date, slot string) []models.ShiftAssignment {
	if l == nil {
		return nil
	}
	return l[date][slot]
}

// Len is the total number of assignments across all cells.
func (l Lookup) Len() int {
	n := 0
	for _, day := range l {
		for _, cell := range day {
			n += len(cell)
		}
	}
	return n
}

// Find returns the assignment with the given id.
func (l Lookup) Find(id int64) (models.ShiftAssignment, bool) {
	for _, day := range l {
		for _, cell := range day {
			for _, a := range cell {
				if a.ID == id {
					return a, true
				}
			}
		}
	}
	return models.ShiftAssignment{}, false
}

// Unknown returns the assignments whose slot key is not in the catalogue,
// ordered by date, slot key, then staff name. The grid renders them in an
// "Other" row instead of dropping them.
func (l Lookup) Unknown() []models.ShiftAssignment {
	var out []models.ShiftAssignment
	for _, day := range l {
		for key, cell := range day {
			if _, ok := calendar.SlotByKey(key); ok {
				continue
			}
			out = append(out, cell...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ShiftDate != b.ShiftDate {
			return a.ShiftDate < b.ShiftDate
		}
		if a.ShiftName != b.ShiftName {
			return a.ShiftName < b.ShiftName
		}
		if a.StaffName != b.StaffName {
			return a.StaffName < b.StaffName
		}
		return a.ID < b.ID
	})
	return out
}

// HasStaff reports whether staffID is booked on date in slot.
func (l Lookup) HasStaff(date, slot string, staffID int64) bool {
	if staffID == 0 {
		return false
	}
	for _, a := range l.Cell(date, slot) {
		if a.StaffID == staffID {
			return true
		}
	}
	return false
}
