package scheduler

import (
	"math"
	"sort"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/models"
)

// Workload statuses reported per staff member.
const (
	StatusUnderbooked = "underbooked"
	StatusBalanced    = "balanced"
	StatusOverbooked  = "overbooked"
)

// Member accumulates one staff member's hours for the week.
type Member struct {
	ID             int64
	FullName       string
	AssignedHours  float64
	AssignedShifts []int64
}

// Scheduler summarizes how a week's assignments are spread across staff.
type Scheduler struct {
	Members map[int64]*Member
	Shifts  int
}

// NewScheduler creates a scheduler seeded with the roster; everyone on it
// is counted even with zero hours.
func NewScheduler(roster []models.StaffMember) *Scheduler {
	s := &Scheduler{Members: make(map[int64]*Member, len(roster))}
	for _, m := range roster {
		s.Members[m.ID] = &Member{ID: m.ID, FullName: m.FullName}
	}
	return s
}

// Prefill records existing assignments. Staff missing from the roster are
// added under the name carried by the assignment.
func (s *Scheduler) Prefill(assignments []models.ShiftAssignment) {
	for _, asgn := range assignments {
		slot, ok := calendar.SlotByKey(asgn.ShiftName)
		if !ok {
			continue
		}
		m, ok := s.Members[asgn.StaffID]
		if !ok {
			m = &Member{ID: asgn.StaffID, FullName: asgn.DisplayName()}
			s.Members[asgn.StaffID] = m
		}
		m.AssignedHours += DurationHours(slot)
		m.AssignedShifts = append(m.AssignedShifts, asgn.ID)
		s.Shifts++
	}
}

// DurationHours is the length of a slot in hours.
func DurationHours(slot calendar.Slot) float64 {
	return float64(slot.EndHour - slot.StartHour)
}

func (s *Scheduler) meanHours() float64 {
	if len(s.Members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range s.Members {
		sum += m.AssignedHours
	}
	return sum / float64(len(s.Members))
}

// CalculateFairnessScore returns a percentage (0-100) representing how evenly
// hours are distributed. 100% is perfectly fair (Standard Deviation = 0).
func (s *Scheduler) CalculateFairnessScore() float64 {
	if len(s.Members) == 0 {
		return 100.0
	}

	mean := s.meanHours()
	if mean == 0 {
		return 100.0 // Everyone having 0 hours is perfectly fair
	}

	var varianceSum float64
	for _, m := range s.Members {
		diff := m.AssignedHours - mean
		varianceSum += diff * diff
	}
	variance := varianceSum / float64(len(s.Members))
	stdDev := math.Sqrt(variance)

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// Status classifies hours against the team mean: above it is overbooked,
// under half of it is underbooked.
func Status(hours, mean float64) string {
	switch {
	case mean > 0 && hours > mean:
		return StatusOverbooked
	case hours < mean/2:
		return StatusUnderbooked
	default:
		return StatusBalanced
	}
}

// Summary ranks members by hours, most first, ties by name.
func (s *Scheduler) Summary(weekStart string) models.WeekSummary {
	mean := s.meanHours()
	rows := make([]models.StaffHours, 0, len(s.Members))
	for _, m := range s.Members {
		rows = append(rows, models.StaffHours{
			StaffID:    m.ID,
			FullName:   m.FullName,
			TotalHours: m.AssignedHours,
			Status:     Status(m.AssignedHours, mean),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalHours != rows[j].TotalHours {
			return rows[i].TotalHours > rows[j].TotalHours
		}
		if rows[i].FullName != rows[j].FullName {
			return rows[i].FullName < rows[j].FullName
		}
		return rows[i].StaffID < rows[j].StaffID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return models.WeekSummary{
		StartDate:     weekStart,
		TotalShifts:   s.Shifts,
		TotalPeople:   len(rows),
		FairnessScore: s.CalculateFairnessScore(),
		Staff:         rows,
	}
}
