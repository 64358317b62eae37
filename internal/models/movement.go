package models

import "time"

// Movement is a procedural step on a case file that starts a deadline countdown.
type Movement struct {
	ID          string    `json:"id"`
	CaseFileID  string    `json:"case_file_id"`
	Description string    `json:"description"`
	FilingDate  Date      `json:"filing_date"`
	DayCount    int       `json:"day_count"`
	DueDate     Date      `json:"due_date"`
	TaskID      *string   `json:"task_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
