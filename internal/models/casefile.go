package models

import "time"

type Urgency string

const (
	UrgencyNormal   Urgency = "Normal"
	UrgencyUrgent   Urgency = "Urgente"
	UrgencyArchived Urgency = "Archivo"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyArchived:
		return true
	}
	return false
}

// CaseFile is an expediente: one legal matter tracked by the office.
type CaseFile struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	FileNumber         string     `json:"file_number"`
	TaxID              string     `json:"tax_id"`
	Phone              string     `json:"phone"`
	ClaimType          string     `json:"claim_type"`
	Amount             string     `json:"amount"`
	Urgency            Urgency    `json:"urgency"`
	ProcurationDate    Date       `json:"procuration_date"`
	ProcurationTime    string     `json:"procuration_time,omitempty"`
	ProcurationSavedAt *time.Time `json:"procuration_saved_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Label renders the "<file number> - <name>" caption used in pickers.
func (c CaseFile) Label() string {
	number := c.FileNumber
	if number == "" {
		number = "S/D"
	}
	return number + " - " + c.Name
}
