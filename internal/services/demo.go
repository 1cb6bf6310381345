package services

import (
	"time"

	"doctorportal-be/internal/models"
)

const oneDay = 24 * time.Hour

type sampleSeed struct {
	id, name, phone string
	patientType     models.PatientType
	queryType       string
	status          string
	createdAgo      time.Duration
	appointmentIn   *time.Duration
	visits          int
	keywords        []string
}

func in(d time.Duration) *time.Duration { return &d }

var sampleContactSeeds = []sampleSeed{
	{"sample-001", "Emily Johnson", "+1 555-0101", models.PatientTypeNew, "Booking", "Pending", 2 * time.Hour, in(26 * time.Hour), 1, []string{"Checkup"}},
	{"sample-002", "Michael Brown", "+1 555-0102", models.PatientTypeExisting, "Follow-up", "Completed", 9 * oneDay, in(3 * oneDay), 4, []string{"Follow-up", "Blood pressure"}},
	{"sample-003", "Sarah Davis", "+1 555-0103", models.PatientTypeNew, "Emergency", "In Progress", 40 * time.Minute, in(90 * time.Minute), 1, []string{"Chest pain"}},
	{"sample-004", "David Wilson", "+1 555-0104", models.PatientTypeExisting, "FAQs", "Completed", 20 * oneDay, nil, 2, nil},
	{"sample-005", "Olivia Martinez", "+1 555-0105", models.PatientTypeExisting, "Reports", "Pending", 3 * oneDay, in(-5 * oneDay), 6, []string{"Lab results"}},
	{"sample-006", "James Anderson", "+1 555-0106", models.PatientTypeNew, "Booking", "Pending", 1 * oneDay, in(10 * oneDay), 1, []string{"Consultation"}},
}

// SampleContacts is the fixed illustrative contact set served in demo mode.
// Times are relative to now so the dashboard always has something to show.
// Under the recency policy the seeded type is replaced by the same
// created-today rule the normalizer applies, so samples never contradict it.
func SampleContacts(now time.Time, policy TypePolicy, loc *time.Location) []models.Contact {
	if loc == nil {
		loc = time.Local
	}
	today := dayOf(now, loc)

	contacts := make([]models.Contact, 0, len(sampleContactSeeds))
	for _, s := range sampleContactSeeds {
		created := now.Add(-s.createdAgo)
		last := created

		patientType := s.patientType
		if policy == TypePolicyRecency {
			patientType = models.PatientTypeExisting
			if today.contains(created) {
				patientType = models.PatientTypeNew
			}
		}

		c := models.Contact{
			ID:              s.id,
			Name:            s.name,
			Phone:           s.phone,
			Type:            patientType,
			QueryType:       s.queryType,
			Status:          s.status,
			Urgency:         UrgencyFor(s.queryType),
			CreatedAt:       created,
			LastInteraction: &last,
			TotalVisits:     s.visits,
			Keywords:        s.keywords,
		}
		if s.appointmentIn != nil {
			at := now.Add(*s.appointmentIn)
			c.AppointmentDate = &at
		}
		contacts = append(contacts, c)
	}
	return contacts
}

// SamplePatient is the demo stand-in for a patient that could not be loaded.
func SamplePatient(id string, now time.Time) models.Contact {
	appointment := now.Add(7 * oneDay)
	last := now.Add(-2 * oneDay)
	return models.Contact{
		ID:              id,
		Name:            "John Smith",
		Phone:           "+1 555-1234",
		Type:            models.PatientTypeExisting,
		QueryType:       "Follow-up",
		Status:          "Completed",
		Urgency:         models.UrgencyMedium,
		CreatedAt:       now.Add(-30 * oneDay),
		AppointmentDate: &appointment,
		LastInteraction: &last,
		TotalVisits:     5,
		Keywords:        []string{"Consultation", "Follow-up", "Prescription"},
	}
}
