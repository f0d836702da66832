package client

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrStaffIDRequired = errors.New("Enter a staff ID before assigning this shift.")
	ErrInvalidStaffID  = errors.New("Enter a valid staff ID")
)

// ParseStaffID validates a manager-typed staff id. It never touches the
// network; callers check it before dispatching an assignment.
func ParseStaffID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrStaffIDRequired
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidStaffID
	}
	return id, nil
}
