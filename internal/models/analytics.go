package models

import "time"

// WeeklyData holds one week of per-day counts. Index i of all three slices
// refers to the same calendar day.
type WeeklyData struct {
	Days             []string `json:"days"`
	NewPatients      []int    `json:"newPatients"`
	ExistingPatients []int    `json:"existingPatients"`
}

// LabeledSeries pairs labels with counts, label[i] describes data[i].
type LabeledSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Analytics is the dashboard summary of a contact collection at one instant.
type Analytics struct {
	TotalPatients         int           `json:"totalPatients"`
	NewPatientsToday      int           `json:"newPatientsToday"`
	ExistingPatients      int           `json:"existingPatients"`
	NewPatients           int           `json:"newPatients"`
	AppointmentsToday     int           `json:"appointmentsToday"`
	Escalations           int           `json:"escalations"`
	WeeklyData            WeeklyData    `json:"weeklyData"`
	EscalationData        LabeledSeries `json:"escalationData"`
	QueryTypeDistribution LabeledSeries `json:"queryTypeDistribution"`
	AppointmentsTrend     LabeledSeries `json:"appointmentsTrend"`
	GeneratedAt           time.Time     `json:"generatedAt"`

	// SampleSeries names the series replaced by illustrative data. Always
	// empty in live mode.
	SampleSeries []string `json:"sampleSeries,omitempty"`
}

type ReportsResponse struct {
	Analytics Analytics `json:"analytics"`
	Mode      string    `json:"mode"`
	Sample    bool      `json:"sample"`
}

type DashboardResponse struct {
	Analytics Analytics `json:"analytics"`
	Patients  []Contact `json:"patients"`
	Mode      string    `json:"mode"`
	Sample    bool      `json:"sample"`
}
