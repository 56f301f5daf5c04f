package model

import "time"

// BillableEntry is one recorded span of work with a rate. It becomes one invoice line.
type BillableEntry struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Rate        float64   `json:"rate"` // per hour
	Project     string    `json:"project,omitempty"`
	Activity    string    `json:"activity,omitempty"`
}

// TimeEntry is the stored timesheet record a BillableEntry is read from.
type TimeEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Rate        float64   `gorm:"not null" json:"rate"`
	Project     string    `gorm:"type:varchar(255)" json:"project"`
	Activity    string    `gorm:"type:varchar(255)" json:"activity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Billable returns the immutable billing view of the entry.
func (e TimeEntry) Billable() BillableEntry {
	return BillableEntry{
		ID:          e.ID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Rate:        e.Rate,
		Project:     e.Project,
		Activity:    e.Activity,
	}
}
