package domain

import (
	"time"
)

// CapacityWindow is a recurring weekly availability rule for one
// responsible union member. Times are wall-clock "15:04" strings, the
// weekday follows time.Weekday (0 = Sunday). An empty break pair means
// no break; a non-empty break must lie fully inside [start, end).
type CapacityWindow struct {
	ID              int64     `json:"id" gorm:"column:id;primaryKey"`
	UnionID         int64     `json:"union_id" gorm:"column:union_id;index"`
	ResponsibleID   int64     `json:"responsible_id" gorm:"column:responsible_id"`
	Weekday         int       `json:"weekday" gorm:"column:weekday"`
	StartTime       string    `json:"start_time" gorm:"column:start_time"`
	EndTime         string    `json:"end_time" gorm:"column:end_time"`
	BreakStart      string    `json:"break_start,omitempty" gorm:"column:break_start"`
	BreakEnd        string    `json:"break_end,omitempty" gorm:"column:break_end"`
	SlotDurationMin int       `json:"slot_duration_minutes" gorm:"column:slot_duration_minutes"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
}

func (CapacityWindow) TableName() string { return "capacity_windows" }

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking assigns a case to one responsible union member for a concrete
// time range. For a given responsible no two active bookings may overlap
// on the same date.
type Booking struct {
	ID            int64         `json:"id" gorm:"column:id;primaryKey"`
	CaseID        int64         `json:"case_id" gorm:"column:case_id;index"`
	UnionID       int64         `json:"union_id" gorm:"column:union_id"`
	ResponsibleID int64         `json:"responsible_id" gorm:"column:responsible_id"`
	Date          string        `json:"date" gorm:"column:date"`
	StartTime     time.Time     `json:"start_time" gorm:"column:start_time"`
	EndTime       time.Time     `json:"end_time" gorm:"column:end_time"`
	MeetingLink   string        `json:"meeting_link,omitempty" gorm:"column:meeting_link"`
	Status        BookingStatus `json:"status" gorm:"column:status"`
	CreatedAt     time.Time     `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"column:updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Slot is a derived bookable interval; it is never persisted.
type Slot struct {
	ResponsibleID int64     `json:"responsible_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}
