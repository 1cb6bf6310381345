package models

import (
	"time"
)

// PatientType classifies a contact as a first-time or returning patient.
type PatientType string

const (
	PatientTypeNew      PatientType = "New"
	PatientTypeExisting PatientType = "Existing"
)

// Urgency is derived from the query type and drives escalation counts.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// Contact is one normalized patient interaction. It is built once per fetch
// and never mutated afterwards.
type Contact struct {
	ID              string      `json:"id" bson:"_id"`
	DoctorID        string      `json:"doctorId,omitempty" bson:"doctorId,omitempty"`
	Name            string      `json:"name" bson:"name"`
	Phone           string      `json:"phone" bson:"phone"`
	Email           string      `json:"email,omitempty" bson:"email,omitempty"`
	Type            PatientType `json:"type" bson:"type"`
	QueryType       string      `json:"queryType" bson:"queryType"`
	Status          string      `json:"status" bson:"status"`
	Urgency         Urgency     `json:"urgency" bson:"urgency"`
	CreatedAt       time.Time   `json:"createdAt" bson:"createdAt"`
	AppointmentDate *time.Time  `json:"appointmentDate,omitempty" bson:"appointmentDate,omitempty"`
	LastInteraction *time.Time  `json:"lastInteraction,omitempty" bson:"lastInteraction,omitempty"`
	TotalVisits     int         `json:"totalVisits" bson:"totalVisits"`
	Intent          string      `json:"intent,omitempty" bson:"intent,omitempty"`
	Transcript      string      `json:"transcript,omitempty" bson:"transcript,omitempty"`
	Keywords        []string    `json:"keywords,omitempty" bson:"keywords,omitempty"`
}

// PatientDetail is the Patient Details page view of a contact with the
// display-time fallbacks applied.
type PatientDetail struct {
	Contact
	LastInteractionDisplay time.Time `json:"lastInteractionDisplay"`
	AppointmentDisplay     string    `json:"appointmentDisplay"`
}

// NewPatientDetail applies display fallbacks: last interaction falls back to
// the creation time, a missing appointment reads "Not scheduled". The
// appointment is shown in loc; a nil loc keeps the stored zone.
func NewPatientDetail(c Contact, loc *time.Location) PatientDetail {
	d := PatientDetail{Contact: c, LastInteractionDisplay: c.CreatedAt, AppointmentDisplay: "Not scheduled"}
	if c.LastInteraction != nil {
		d.LastInteractionDisplay = *c.LastInteraction
	}
	if c.AppointmentDate != nil {
		at := *c.AppointmentDate
		if loc != nil {
			at = at.In(loc)
		}
		d.AppointmentDisplay = at.Format("Mon, Jan 2, 2006 at 03:04 PM")
	}
	if d.TotalVisits == 0 {
		d.TotalVisits = 1
	}
	return d
}

// ContactListResponse is returned by list pages.
type ContactListResponse struct {
	Patients []Contact `json:"patients"`
	Total    int       `json:"total"`
	Mode     string    `json:"mode"`
	Sample   bool      `json:"sample"`
}

type PatientDetailResponse struct {
	Patient PatientDetail `json:"patient"`
	Mode    string        `json:"mode"`
	Sample  bool          `json:"sample"`
}
