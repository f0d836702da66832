package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/database"
	"github.com/arnavshah/shiftboard/pkg/models"
	"github.com/arnavshah/shiftboard/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// weekParam reads ?start_date=, defaulting to the current week.
func (h *Handler) weekParam(c *gin.Context) (calendar.Week, bool) {
	raw := strings.TrimSpace(c.Query("start_date"))
	if raw == "" {
		return calendar.WeekOf(h.today()), true
	}
	w, err := calendar.ParseWeek(raw, h.loc())
	if err != nil {
		jsonError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return calendar.Week{}, false
	}
	return w, true
}

func (h *Handler) weekShifts(w calendar.Week) ([]database.ScheduleShift, error) {
	var rows []database.ScheduleShift
	err := h.DB.Preload("Staff").
		Where("shift_date >= ? AND shift_date < ?", w.ISO(), w.Next().ISO()).
		Order("shift_date, shift_name, id").
		Find(&rows).Error
	return rows, err
}

// ListWeek returns the assignments of one Monday-aligned week
func (h *Handler) ListWeek(c *gin.Context) {
	week, ok := h.weekParam(c)
	if !ok {
		return
	}
	rows, err := h.weekShifts(week)
	if err != nil {
		h.logger().Error("list week failed", zap.String("week", week.ISO()), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not load schedule")
		return
	}

	shifts := make([]models.ShiftAssignment, 0, len(rows))
	for _, r := range rows {
		shifts = append(shifts, r.ToModel())
	}
	c.JSON(http.StatusOK, models.WeekResponse{
		StartDate: week.ISO(),
		EndDate:   calendar.ToISODate(week.End()),
		Shifts:    shifts,
	})
}

func (h *Handler) activeStaff() ([]database.Staff, error) {
	var staff []database.Staff
	err := h.DB.Where("is_active = ?", true).Order("full_name, id").Find(&staff).Error
	return staff, err
}

// ListStaff returns the active roster for manager assignment
func (h *Handler) ListStaff(c *gin.Context) {
	staff, err := h.activeStaff()
	if err != nil {
		h.logger().Error("list staff failed", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not load staff")
		return
	}
	out := make([]models.StaffMember, 0, len(staff))
	for _, s := range staff {
		out = append(out, s.ToMember())
	}
	c.JSON(http.StatusOK, models.RosterResponse{Staff: out})
}

// CreateShift books one staff member into one slot
func (h *Handler) CreateShift(c *gin.Context) {
	var in createShiftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		// an unreadable body is treated as empty
		in = createShiftInput{}
	}
	req, err := validateCreateShift(in, h.today(), h.loc())
	if err != nil {
		if re, ok := asRequestError(err); ok {
			jsonError(c, re.Status, re.Message)
			return
		}
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	viewer := viewerFrom(c)
	var staffID int64
	if viewer.CanManageAll() {
		staffID = viewer.ID
		if req.StaffID != nil && *req.StaffID != 0 {
			staffID = *req.StaffID
		}
	} else {
		// staff can only book themselves
		staffID = viewer.ID
		if req.StaffID != nil && *req.StaffID != 0 && *req.StaffID != staffID {
			jsonError(c, http.StatusForbidden, "staff cannot assign shifts to others")
			return
		}
	}
	if staffID == 0 {
		jsonError(c, http.StatusBadRequest, "staff_id is required")
		return
	}

	var staff database.Staff
	if err := h.DB.First(&staff, staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "staff member not found")
			return
		}
		h.logger().Error("staff lookup failed", zap.Int64("staff_id", staffID), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not create shift")
		return
	}

	exists := func() (bool, error) {
		var count int64
		err := h.DB.Model(&database.ScheduleShift{}).
			Where("staff_id = ? AND shift_date = ? AND shift_name = ?", staffID, req.Date, req.Slot).
			Count(&count).Error
		return count > 0, err
	}
	dup, err := exists()
	if err != nil {
		h.logger().Error("duplicate check failed", zap.Int64("staff_id", staffID), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not create shift")
		return
	}
	if dup {
		jsonError(c, http.StatusConflict, "shift already exists for that staff member")
		return
	}

	shift := database.ScheduleShift{StaffID: staffID, ShiftDate: req.Date, ShiftName: req.Slot}
	if err := h.DB.Omit("Staff").Create(&shift).Error; err != nil {
		// lost a race against the unique index
		if dup, checkErr := exists(); checkErr == nil && dup {
			jsonError(c, http.StatusConflict, "shift already exists for that staff member")
			return
		}
		h.logger().Error("create shift failed", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not create shift")
		return
	}
	shift.Staff = staff

	h.logger().Info("shift created",
		zap.Int64("id", shift.ID),
		zap.Int64("staff_id", staffID),
		zap.String("date", req.Date),
		zap.String("slot", req.Slot),
		zap.Int64("by", viewer.ID))
	c.JSON(http.StatusCreated, shift.ToModel())
}

// DeleteShift removes an assignment. Staff may only remove their own.
func (h *Handler) DeleteShift(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(c, http.StatusNotFound, "shift not found")
		return
	}

	var shift database.ScheduleShift
	if err := h.DB.First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "shift not found")
			return
		}
		h.logger().Error("shift lookup failed", zap.Int64("id", id), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not delete shift")
		return
	}

	viewer := viewerFrom(c)
	if !viewer.CanManageAll() && shift.StaffID != viewer.ID {
		jsonError(c, http.StatusForbidden, "insufficient permissions")
		return
	}

	if err := h.DB.Delete(&database.ScheduleShift{}, id).Error; err != nil {
		h.logger().Error("delete shift failed", zap.Int64("id", id), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not delete shift")
		return
	}
	h.logger().Info("shift removed", zap.Int64("id", id), zap.Int64("by", viewer.ID))
	c.JSON(http.StatusOK, models.MessageResponse{Message: "shift removed"})
}

// Summary returns per-staff hours, ranks and the fairness score for a week
func (h *Handler) Summary(c *gin.Context) {
	week, ok := h.weekParam(c)
	if !ok {
		return
	}
	rows, err := h.weekShifts(week)
	if err != nil {
		h.logger().Error("summary shifts failed", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not load summary")
		return
	}
	staff, err := h.activeStaff()
	if err != nil {
		h.logger().Error("summary staff failed", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Could not load summary")
		return
	}

	roster := make([]models.StaffMember, 0, len(staff))
	for _, s := range staff {
		roster = append(roster, s.ToMember())
	}
	assignments := make([]models.ShiftAssignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.ToModel())
	}

	s := scheduler.NewScheduler(roster)
	s.Prefill(assignments)
	c.JSON(http.StatusOK, s.Summary(week.ISO()))
}
