package database

import (
	"fmt"
	"time"

	"github.com/arnavshah/shiftboard/pkg/config"
	"github.com/arnavshah/shiftboard/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Staff represents the staff table
type Staff struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"not null" json:"full_name"`
	Role         string    `gorm:"not null;default:staff" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScheduleShift represents the schedule_shifts table. ShiftDate is stored as
// YYYY-MM-DD so range filters compare the same way on every driver.
type ScheduleShift struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	StaffID   int64     `gorm:"uniqueIndex:uq_staff_shift;not null" json:"staff_id"`
	ShiftDate string    `gorm:"uniqueIndex:uq_staff_shift;index;size:10;not null" json:"shift_date"`
	ShiftName string    `gorm:"uniqueIndex:uq_staff_shift;size:5;not null" json:"shift_name"`
	CreatedAt time.Time `json:"created_at"`
	Staff     Staff     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ToModel joins a shift with its staff row for the wire format.
func (s ScheduleShift) ToModel() models.ShiftAssignment {
	created := s.CreatedAt
	return models.ShiftAssignment{
		ID:        s.ID,
		ShiftDate: s.ShiftDate,
		ShiftName: s.ShiftName,
		StaffID:   s.StaffID,
		StaffName: s.Staff.FullName,
		Role:      s.Staff.Role,
		CreatedAt: &created,
	}
}

// ToMember is the roster entry for a staff row.
func (s Staff) ToMember() models.StaffMember {
	return models.StaffMember{ID: s.ID, FullName: s.FullName, Role: s.Role}
}

// Dialector picks postgres when a URL is configured, sqlite otherwise.
func Dialector(cfg config.DatabaseConfig) gorm.Dialector {
	if cfg.URL != "" {
		return postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		})
	}
	path := cfg.Path
	if path == "" {
		path = "schedule.db"
	}
	return sqlite.Open(path)
}

// Open connects without migrating.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: false,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		// sqlite ignores foreign keys unless asked
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Staff{}, &ScheduleShift{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// InitDB initializes the database connection and migrates the schema
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(Dialector(cfg))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
