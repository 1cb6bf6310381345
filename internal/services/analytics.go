package services

import (
	"time"

	"doctorportal-be/internal/models"
)

// Sample series names reported in Analytics.SampleSeries.
const (
	SeriesWeekly       = "weeklyData"
	SeriesEscalation   = "escalationData"
	SeriesQueryTypes   = "queryTypeDistribution"
	SeriesAppointments = "appointmentsTrend"
)

const appointmentTrendSize = 4

var (
	weekdayLabels   = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	urgencyLabels   = []models.Urgency{models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow}
	queryTypeLabels = []string{"Booking", "FAQs", "Follow-up", "Emergency", "Reports"}
	trendLabels     = []string{"Week 1", "Week 2", "Week 3", "Week 4"}

	sampleWeeklyNew      = []int{4, 6, 3, 8, 5, 2, 1}
	sampleWeeklyExisting = []int{10, 12, 9, 14, 11, 6, 3}
	sampleEscalation     = []int{3, 7, 12}
	sampleQueryTypes     = []int{12, 8, 5, 3, 4}
	sampleTrend          = []int{8, 12, 10, 15}
)

// Aggregator reduces a contact collection to Analytics. It holds no state
// between calls; the result depends only on the input and the clock.
type Aggregator struct {
	policy TypePolicy
	demo   bool
	now    func() time.Time
	loc    *time.Location
}

// NewAggregator builds an aggregator. demo enables illustrative series for
// charts that would otherwise be empty.
func NewAggregator(policy TypePolicy, demo bool, now func() time.Time, loc *time.Location) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if policy != TypePolicyRecency {
		policy = TypePolicyExplicit
	}
	return &Aggregator{policy: policy, demo: demo, now: now, loc: loc}
}

// Calculate derives the dashboard analytics for contacts.
func (a *Aggregator) Calculate(contacts []models.Contact) models.Analytics {
	now := a.now()
	today := dayOf(now, a.loc)

	out := models.Analytics{
		TotalPatients: len(contacts),
		GeneratedAt:   now,
	}

	for _, c := range contacts {
		switch c.Type {
		case models.PatientTypeNew:
			out.NewPatients++
			if today.contains(c.CreatedAt) {
				out.NewPatientsToday++
			}
		case models.PatientTypeExisting:
			out.ExistingPatients++
		}
		if c.AppointmentDate != nil && today.contains(*c.AppointmentDate) {
			out.AppointmentsToday++
		}
		if c.Urgency == models.UrgencyHigh {
			out.Escalations++
		}
	}

	out.WeeklyData = a.weekly(contacts, now)
	out.EscalationData = escalationDistribution(contacts)
	out.QueryTypeDistribution = queryTypeDistribution(contacts)
	out.AppointmentsTrend = a.appointmentsTrend(contacts, now)

	if a.demo {
		a.fillSamples(&out)
	}
	return out
}

// weekly buckets creation dates into Mon..Sun of the current week.
func (a *Aggregator) weekly(contacts []models.Contact, now time.Time) models.WeeklyData {
	start := weekStart(now, a.loc)
	data := models.WeeklyData{
		Days:             append([]string(nil), weekdayLabels...),
		NewPatients:      make([]int, len(weekdayLabels)),
		ExistingPatients: make([]int, len(weekdayLabels)),
	}

	for i := range weekdayLabels {
		day := start.addDays(i)
		for _, c := range contacts {
			if a.policy == TypePolicyRecency {
				// Existing on a day means the patient was already known before it.
				switch {
				case day.contains(c.CreatedAt):
					data.NewPatients[i]++
				case c.CreatedAt.Before(day.Start):
					data.ExistingPatients[i]++
				}
				continue
			}

			if !day.contains(c.CreatedAt) {
				continue
			}
			switch c.Type {
			case models.PatientTypeNew:
				data.NewPatients[i]++
			case models.PatientTypeExisting:
				data.ExistingPatients[i]++
			}
		}
	}
	return data
}

func escalationDistribution(contacts []models.Contact) models.LabeledSeries {
	series := models.LabeledSeries{
		Labels: make([]string, len(urgencyLabels)),
		Data:   make([]int, len(urgencyLabels)),
	}
	for i, level := range urgencyLabels {
		series.Labels[i] = string(level)
		for _, c := range contacts {
			if c.Urgency == level {
				series.Data[i]++
			}
		}
	}
	return series
}

// queryTypeDistribution counts exact label matches. Query types outside the
// fixed label set are not counted anywhere.
func queryTypeDistribution(contacts []models.Contact) models.LabeledSeries {
	series := models.LabeledSeries{
		Labels: append([]string(nil), queryTypeLabels...),
		Data:   make([]int, len(queryTypeLabels)),
	}
	for i, label := range queryTypeLabels {
		for _, c := range contacts {
			if c.QueryType == label {
				series.Data[i]++
			}
		}
	}
	return series
}

// appointmentsTrend counts appointments in four consecutive seven-day windows
// ending now, oldest first. Windows are half-open [start, end).
func (a *Aggregator) appointmentsTrend(contacts []models.Contact, now time.Time) models.LabeledSeries {
	now = now.In(a.loc)
	series := models.LabeledSeries{
		Labels: append([]string(nil), trendLabels...),
		Data:   make([]int, appointmentTrendSize),
	}
	for i := 0; i < appointmentTrendSize; i++ {
		end := now.AddDate(0, 0, -(appointmentTrendSize-1-i)*7)
		window := dayWindow{Start: end.AddDate(0, 0, -7), End: end}
		for _, c := range contacts {
			if c.AppointmentDate != nil && window.contains(*c.AppointmentDate) {
				series.Data[i]++
			}
		}
	}
	return series
}

func (a *Aggregator) fillSamples(out *models.Analytics) {
	if allZero(out.WeeklyData.NewPatients) && allZero(out.WeeklyData.ExistingPatients) {
		out.WeeklyData.NewPatients = append([]int(nil), sampleWeeklyNew...)
		out.WeeklyData.ExistingPatients = append([]int(nil), sampleWeeklyExisting...)
		out.SampleSeries = append(out.SampleSeries, SeriesWeekly)
	}
	if allZero(out.EscalationData.Data) {
		out.EscalationData.Data = append([]int(nil), sampleEscalation...)
		out.SampleSeries = append(out.SampleSeries, SeriesEscalation)
	}
	if allZero(out.QueryTypeDistribution.Data) {
		out.QueryTypeDistribution.Data = append([]int(nil), sampleQueryTypes...)
		out.SampleSeries = append(out.SampleSeries, SeriesQueryTypes)
	}
	if allZero(out.AppointmentsTrend.Data) {
		out.AppointmentsTrend.Data = append([]int(nil), sampleTrend...)
		out.SampleSeries = append(out.SampleSeries, SeriesAppointments)
	}
}

func allZero(data []int) bool {
	for _, n := range data {
		if n != 0 {
			return false
		}
	}
	return true
}
