package services

import (
	"strconv"
	"strings"
	"time"

	"doctorportal-be/internal/models"
)

// TypePolicy selects how a contact's New/Existing classification is derived.
type TypePolicy string

const (
	// TypePolicyExplicit reads the patient_type field of the document.
	TypePolicyExplicit TypePolicy = "explicit"
	// TypePolicyRecency classifies contacts created today as New.
	TypePolicyRecency TypePolicy = "recency"
)

const (
	defaultName      = "Unknown"
	defaultPhone     = "N/A"
	defaultQueryType = "General"
	defaultStatus    = "Pending"
)

// Layouts accepted for timestamps stored as strings, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalizer maps raw contact documents to Contacts. Every field has a
// default, so Normalize never fails.
type Normalizer struct {
	policy TypePolicy
	now    func() time.Time
	loc    *time.Location
}

// NewNormalizer creates a normalizer. A nil now uses time.Now and a nil loc
// uses time.Local.
func NewNormalizer(policy TypePolicy, now func() time.Time, loc *time.Location) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if policy != TypePolicyRecency {
		policy = TypePolicyExplicit
	}
	return &Normalizer{policy: policy, now: now, loc: loc}
}

func (n *Normalizer) Policy() TypePolicy {
	return n.policy
}

// NormalizeAll normalizes docs in order.
func (n *Normalizer) NormalizeAll(docs []models.RawDocument) []models.Contact {
	contacts := make([]models.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, n.Normalize(doc))
	}
	return contacts
}

// Normalize maps a raw document onto a Contact, applying field fallbacks.
func (n *Normalizer) Normalize(doc models.RawDocument) models.Contact {
	now := n.now()
	createdAt := n.createdAt(doc, now)
	queryType := textOr(doc, defaultQueryType, "type")

	return models.Contact{
		ID:              doc.ID(),
		DoctorID:        textOr(doc, "", "doctorId", "doctor_id"),
		Name:            textOr(doc, defaultName, "name"),
		Phone:           textOr(doc, defaultPhone, "number", "phone"),
		Email:           textOr(doc, "", "email"),
		Type:            n.patientType(doc, createdAt, now),
		QueryType:       queryType,
		Status:          textOr(doc, defaultStatus, "status"),
		Urgency:         UrgencyFor(queryType),
		CreatedAt:       createdAt,
		AppointmentDate: n.appointmentDate(doc),
		LastInteraction: n.lastInteraction(doc),
		TotalVisits:     totalVisits(doc),
		Intent:          textOr(doc, "", "intent"),
		Transcript:      textOr(doc, "", "transcript"),
		Keywords:        keywords(doc),
	}
}

// UrgencyFor is the fixed query type to urgency mapping.
func UrgencyFor(queryType string) models.Urgency {
	switch queryType {
	case "Emergency":
		return models.UrgencyHigh
	case "Follow-up":
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func (n *Normalizer) patientType(doc models.RawDocument, createdAt, now time.Time) models.PatientType {
	if n.policy == TypePolicyRecency {
		if dayOf(now, n.loc).contains(createdAt) {
			return models.PatientTypeNew
		}
		return models.PatientTypeExisting
	}

	if strings.EqualFold(strings.TrimSpace(textOr(doc, "", "patient_type")), "existing") {
		return models.PatientTypeExisting
	}
	return models.PatientTypeNew
}

func (n *Normalizer) createdAt(doc models.RawDocument, now time.Time) time.Time {
	if t, ok := n.timestampField(doc, "createdAt", "created_at"); ok {
		return t
	}
	if !doc.CreateTime.IsZero() {
		return doc.CreateTime
	}
	return now
}

func (n *Normalizer) lastInteraction(doc models.RawDocument) *time.Time {
	if t, ok := n.timestampField(doc, "lastInteraction", "updatedAt"); ok {
		return &t
	}
	if !doc.UpdateTime.IsZero() {
		t := doc.UpdateTime
		return &t
	}
	return nil
}

// appointmentDate reads requested_booked_time, either a timestamp or text such
// as "2025-12-31 at 9.00". Anything unparseable means no appointment.
func (n *Normalizer) appointmentDate(doc models.RawDocument) *time.Time {
	v, ok := doc.Field("requested_booked_time")
	if !ok {
		return nil
	}
	switch v.Kind {
	case models.KindTimestamp:
		t := v.Time
		return &t
	case models.KindString:
		if t, ok := parseBookedTime(v.Str, n.loc); ok {
			return &t
		}
	}
	return nil
}

func parseBookedTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}

	iso := strings.Replace(s, " at ", "T", 1)
	if i := strings.Index(iso, "T"); i >= 0 && !strings.Contains(iso[i:], ":") {
		iso = iso[:i] + strings.Replace(iso[i:], ".", ":", 1)
	}
	return parseTimestamp(iso, loc)
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) timestampField(doc models.RawDocument, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, ok := doc.Field(key)
		if !ok {
			continue
		}
		switch v.Kind {
		case models.KindTimestamp:
			return v.Time, true
		case models.KindString:
			if t, ok := parseTimestamp(strings.TrimSpace(v.Str), n.loc); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// textOr returns the first non-empty string or integer field among keys.
func textOr(doc models.RawDocument, fallback string, keys ...string) string {
	for _, key := range keys {
		v, ok := doc.Field(key)
		if !ok {
			continue
		}
		if s, ok := v.Text(); ok && s != "" {
			return s
		}
	}
	return fallback
}

func totalVisits(doc models.RawDocument) int {
	for _, key := range []string{"totalVisits", "total_visits"} {
		v, ok := doc.Field(key)
		if !ok {
			continue
		}
		if s, ok := v.Text(); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

func keywords(doc models.RawDocument) []string {
	v, ok := doc.Field("keywords")
	if !ok || v.Kind != models.KindStringArray || len(v.Strings) == 0 {
		return nil
	}
	out := make([]string, len(v.Strings))
	copy(out, v.Strings)
	return out
}
