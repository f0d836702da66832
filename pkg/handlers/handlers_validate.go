package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/shiftboard/pkg/calendar"
)

// createShiftInput accepts the fields of a POST /schedule body, including
// the short aliases older clients send.
type createShiftInput struct {
	ShiftDate string          `json:"shift_date"`
	Date      string          `json:"date"`
	ShiftName string          `json:"shift_name"`
	Shift     string          `json:"shift"`
	StaffID   json.RawMessage `json:"staff_id"`
}

// validShift is a create request that passed every check not needing the
// database or the caller's identity.
type validShift struct {
	Date    string
	Slot    string
	StaffID *int64
}

// requestError is a validation failure with its HTTP status.
type requestError struct {
	Status  int
	Message string
}

func (e *requestError) Error() string { return e.Message }

func badRequest(msg string) *requestError {
	return &requestError{Status: http.StatusBadRequest, Message: msg}
}

var errStaffIDNotInteger = badRequest("staff_id must be an integer")

// validateCreateShift checks a decoded body against the slot catalogue and
// today's date in loc.
func validateCreateShift(in createShiftInput, today time.Time, loc *time.Location) (validShift, error) {
	rawDate := strings.TrimSpace(in.ShiftDate)
	if rawDate == "" {
		rawDate = strings.TrimSpace(in.Date)
	}
	if rawDate == "" {
		return validShift{}, badRequest("shift_date is required")
	}
	date, err := calendar.ParseISODate(rawDate, loc)
	if err != nil {
		return validShift{}, badRequest("shift_date must be YYYY-MM-DD")
	}

	slot := in.ShiftName
	if slot == "" {
		slot = in.Shift
	}
	slot = strings.ToLower(strings.TrimSpace(slot))
	if _, ok := calendar.SlotByKey(slot); !ok {
		return validShift{}, badRequest("shift_name must be one of: " + strings.Join(calendar.SlotKeys(), ", "))
	}

	if date.Before(calendar.StartOfDay(today.In(loc))) {
		return validShift{}, badRequest("shift_date cannot be before today")
	}

	staffID, err := parseStaffID(in.StaffID)
	if err != nil {
		return validShift{}, err
	}
	return validShift{Date: calendar.ToISODate(date), Slot: slot, StaffID: staffID}, nil
}

// parseStaffID accepts a JSON integer or an integer string; null or absent
// means no explicit staff id.
func parseStaffID(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errStaffIDNotInteger
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, errStaffIDNotInteger
	}
	return &n, nil
}

func asRequestError(err error) (*requestError, bool) {
	var re *requestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
