package models

import (
	"strconv"
	"strings"
	"time"
)

// Role is the account role carried in the viewer context and the token claims
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ParseRole normalizes a role string; anything unknown is a customer.
func ParseRole(raw string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleStaff, RoleManager, RoleAdmin:
		return r
	default:
		return RoleCustomer
	}
}

// IsStaff reports whether the role may see the schedule grid.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleManager || r == RoleAdmin
}

// CanManageAll reports whether the role may assign or remove anyone.
func (r Role) CanManageAll() bool {
	return r == RoleManager || r == RoleAdmin
}

// ShiftAssignment binds one staff member to one (date, slot) pair
type ShiftAssignment struct {
	ID        int64      `json:"id"`
	ShiftDate string     `json:"shift_date"`
	ShiftName string     `json:"shift_name"`
	StaffID   int64      `json:"staff_id"`
	StaffName string     `json:"staff_name,omitempty"`
	Role      string     `json:"role,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// DisplayName falls back to "Staff #id" when the name is missing.
func (a ShiftAssignment) DisplayName() string {
	if a.StaffName != "" {
		return a.StaffName
	}
	return "Staff #" + strconv.FormatInt(a.StaffID, 10)
}

// StaffMember is one roster entry
type StaffMember struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// Viewer is the signed-in account looking at the grid. ID is zero when the
// session carries no usable numeric id.
type Viewer struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsStaff reports whether the viewer sees the grid at all.
func (v Viewer) IsStaff() bool { return v.Role.IsStaff() }

// CanManageAll reports whether the viewer has manager affordances.
func (v Viewer) CanManageAll() bool { return v.Role.CanManageAll() }

// Owns reports whether the assignment belongs to the viewer.
func (v Viewer) Owns(a ShiftAssignment) bool {
	return v.ID != 0 && a.StaffID == v.ID
}

// WeekResponse is the body of GET /schedule
type WeekResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date,omitempty"`
	Shifts    []ShiftAssignment `json:"shifts"`
}

// RosterResponse is the body of GET /schedule/staff
type RosterResponse struct {
	Staff []StaffMember `json:"staff"`
}

// CreateAssignmentRequest is the body of POST /schedule. A nil StaffID
// means the caller assigns themselves.
type CreateAssignmentRequest struct {
	ShiftDate string `json:"shift_date"`
	ShiftName string `json:"shift_name"`
	StaffID   *int64 `json:"staff_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain confirmation body
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	StaffID     int64  `json:"staff_id"`
	Role        Role   `json:"role"`
}

// StaffHours is one row of the weekly summary
type StaffHours struct {
	StaffID    int64   `json:"staff_id"`
	FullName   string  `json:"full_name"`
	TotalHours float64 `json:"total_hours"`
	Status     string  `json:"status"`
	Rank       int     `json:"rank"`
}

// WeekSummary is the body of GET /schedule/summary
type WeekSummary struct {
	StartDate     string       `json:"start_date"`
	TotalShifts   int          `json:"total_shifts"`
	TotalPeople   int          `json:"total_people"`
	FairnessScore float64      `json:"fairness_score"`
	Staff         []StaffHours `json:"staff"`
}
