package grid

import (
	"math/rand"
	"testing"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_GroupsByDateAndSlot(t *testing.T) {
	shifts := []models.ShiftAssignment{
		{ID: 1, ShiftDate: "2024-06-05", ShiftName: "14:00", StaffID: 7, StaffName: "Zoe"},
		{ID: 2, ShiftDate: "2024-06-05", ShiftName: "14:00", StaffID: 9, StaffName: "Ada"},
		{ID: 3, ShiftDate: "2024-06-05", ShiftName: "15:00", StaffID: 7, StaffName: "Zoe"},
		{ID: 4, ShiftDate: "2024-06-06", ShiftName: "14:00", StaffID: 9, StaffName: "Ada"},
	}
	l := Project(shifts)

	cell := l.Cell("2024-06-05", "14:00")
	require.Len(t, cell, 2)
	assert.Equal(t, "Ada", cell[0].StaffName, "cells are ordered by staff name")
	assert.Len(t, l.Cell("2024-06-05", "15:00"), 1)
	assert.Len(t, l.Cell("2024-06-06", "14:00"), 1)
	assert.Empty(t, l.Cell("2024-06-07", "14:00"))
	assert.Equal(t, len(shifts), l.Len())
	assert.True(t, l.HasStaff("2024-06-05", "14:00", 7))
	assert.False(t, l.HasStaff("2024-06-06", "14:00", 7))
	assert.False(t, l.HasStaff("2024-06-05", "14:00", 0))
}

func TestProject_NeverDropsOrDuplicates(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	keys := append(calendar.SlotKeys(), "morning", "")
	dates := []string{"2024-06-03", "2024-06-04", "2024-06-09", ""}
	var shifts []models.ShiftAssignment
	for i := 0; i < 500; i++ {
		shifts = append(shifts, models.ShiftAssignment{
			ID:        int64(i + 1),
			ShiftDate: dates[r.Intn(len(dates))],
			ShiftName: keys[r.Intn(len(keys))],
			StaffID:   int64(r.Intn(5) + 1),
		})
	}

	l := Project(shifts)
	assert.Equal(t, len(shifts), l.Len())

	seen := map[int64]int{}
	for date, day := range l {
		for key, cell := range day {
			for _, a := range cell {
				seen[a.ID]++
				assert.Equal(t, date, a.ShiftDate)
				assert.Equal(t, key, a.ShiftName)
			}
		}
	}
	assert.Len(t, seen, len(shifts))
	for id, n := range seen {
		assert.Equal(t, 1, n, "assignment %d", id)
	}
}

func TestUnknown_SurfacesOffCatalogueSlots(t *testing.T) {
	l := Project([]models.ShiftAssignment{
		{ID: 1, ShiftDate: "2024-06-05", ShiftName: "14:00", StaffID: 7},
		{ID: 2, ShiftDate: "2024-06-06", ShiftName: "morning", StaffID: 7},
		{ID: 3, ShiftDate: "2024-06-05", ShiftName: "09:00", StaffID: 9},
	})
	unknown := l.Unknown()
	require.Len(t, unknown, 2)
	assert.Equal(t, int64(3), unknown[0].ID)
	assert.Equal(t, int64(2), unknown[1].ID)
}

func TestFind(t *testing.T) {
	l := Project([]models.ShiftAssignment{{ID: 5, ShiftDate: "2024-06-05", ShiftName: "14:00"}})
	a, ok := l.Find(5)
	require.True(t, ok)
	assert.Equal(t, "14:00", a.ShiftName)
	_, ok = l.Find(6)
	assert.False(t, ok)
}

func TestNilLookup(t *testing.T) {
	var l Lookup
	assert.Empty(t, l.Cell("2024-06-05", "14:00"))
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Unknown())
}
