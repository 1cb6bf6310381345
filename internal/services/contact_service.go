package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/observability"
	"doctorportal-be/internal/repository"
)

const defaultFetchTimeout = 10 * time.Second

// ContactServiceConfig is resolved once at startup.
type ContactServiceConfig struct {
	Mode              string
	TypePolicy        TypePolicy
	FetchTimeout      time.Duration
	PartitionByDoctor bool
	Location          *time.Location
	Now               func() time.Time
}

// ContactSet is a fetched contact list. Sample is true when the contacts are
// demo stand-ins rather than store data.
type ContactSet struct {
	Contacts []models.Contact
	Sample   bool
}

// ContactService runs the fetch, normalize and aggregate pipeline for one
// request. Nothing is cached between calls.
type ContactService struct {
	source     repository.ContactSource
	normalizer *Normalizer
	aggregator *Aggregator
	metrics    *observability.Metrics

	mode         string
	fetchTimeout time.Duration
	partition    bool
	now          func() time.Time
}

// NewContactService creates a new contact service
func NewContactService(source repository.ContactSource, cfg ContactServiceConfig, metrics *observability.Metrics) *ContactService {
	if cfg.Mode != config.ModeDemo {
		cfg.Mode = config.ModeLive
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	demo := cfg.Mode == config.ModeDemo

	return &ContactService{
		source:       source,
		normalizer:   NewNormalizer(cfg.TypePolicy, cfg.Now, cfg.Location),
		aggregator:   NewAggregator(cfg.TypePolicy, demo, cfg.Now, cfg.Location),
		metrics:      metrics,
		mode:         cfg.Mode,
		fetchTimeout: cfg.FetchTimeout,
		partition:    cfg.PartitionByDoctor,
		now:          cfg.Now,
	}
}

// Mode reports "demo" or "live".
func (s *ContactService) Mode() string {
	return s.mode
}

// Location is the zone used for day boundaries and appointment display.
func (s *ContactService) Location() *time.Location {
	return s.normalizer.loc
}

func (s *ContactService) IsDemo() bool {
	return s.mode == config.ModeDemo
}

// ListContacts returns the doctor's normalized contacts. In demo mode a
// failed or empty fetch yields the sample set.
func (s *ContactService) ListContacts(ctx context.Context, session models.Session) (*ContactSet, error) {
	ctx, span := observability.StartSpan(ctx, "ContactService.ListContacts",
		attribute.String("data.mode", s.mode),
		attribute.String("doctor.id", session.DoctorID),
	)
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	docs, err := s.source.List(fetchCtx, session)
	s.metrics.RecordFetch(ctx, "list", time.Since(start), err)

	if err != nil {
		err = classifyFetchError(err)
		observability.RecordError(span, err)
		if s.IsDemo() {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Contact fetch failed, serving sample contacts")
			return s.sampleSet(ctx, "list"), nil
		}
		return nil, err
	}

	contacts := s.partitionContacts(s.normalizer.NormalizeAll(docs), session)
	span.SetAttributes(attribute.Int("contacts.count", len(contacts)))

	if len(contacts) == 0 && s.IsDemo() {
		return s.sampleSet(ctx, "list"), nil
	}
	return &ContactSet{Contacts: contacts}, nil
}

// GetContact loads one contact. In live mode a missing or foreign contact is
// a NotFound error; in demo mode it is replaced by the sample patient.
func (s *ContactService) GetContact(ctx context.Context, session models.Session, id string) (*models.Contact, bool, error) {
	ctx, span := observability.StartSpan(ctx, "ContactService.GetContact",
		attribute.String("data.mode", s.mode),
		attribute.String("contact.id", id),
	)
	defer span.End()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	start := time.Now()
	doc, err := s.source.Get(fetchCtx, session, id)
	if apperrors.IsNotFound(err) {
		s.metrics.RecordFetch(ctx, "get", time.Since(start), nil)
	} else {
		s.metrics.RecordFetch(ctx, "get", time.Since(start), err)
	}

	var contact models.Contact
	if err == nil {
		contact = s.normalizer.Normalize(*doc)
		if s.partition && contact.DoctorID != session.DoctorID {
			err = apperrors.NewNotFoundError("contact not found")
		}
	}

	if err != nil {
		err = classifyFetchError(err)
		if !apperrors.IsNotFound(err) {
			observability.RecordError(span, err)
		}
		if s.IsDemo() {
			s.metrics.RecordSample(ctx, "get")
			sample := SamplePatient(id, s.now())
			return &sample, true, nil
		}
		return nil, false, err
	}
	return &contact, false, nil
}

// Analytics computes dashboard statistics. The bool reports sample data.
func (s *ContactService) Analytics(ctx context.Context, session models.Session) (*models.Analytics, bool, error) {
	set, err := s.ListContacts(ctx, session)
	if err != nil {
		return nil, false, err
	}
	analytics := s.calculate(ctx, set.Contacts)
	return &analytics, set.Sample, nil
}

// Dashboard returns analytics over all contacts plus the contacts matching
// query for the patient list.
func (s *ContactService) Dashboard(ctx context.Context, session models.Session, query string) (*models.Analytics, *ContactSet, error) {
	set, err := s.ListContacts(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	analytics := s.calculate(ctx, set.Contacts)
	return &analytics, &ContactSet{Contacts: FilterContacts(set.Contacts, query), Sample: set.Sample}, nil
}

// Appointments returns contacts with an appointment, earliest first.
func (s *ContactService) Appointments(ctx context.Context, session models.Session) (*ContactSet, error) {
	set, err := s.ListContacts(ctx, session)
	if err != nil {
		return nil, err
	}

	scheduled := make([]models.Contact, 0, len(set.Contacts))
	for _, c := range set.Contacts {
		if c.AppointmentDate != nil {
			scheduled = append(scheduled, c)
		}
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].AppointmentDate.Before(*scheduled[j].AppointmentDate)
	})
	return &ContactSet{Contacts: scheduled, Sample: set.Sample}, nil
}

// SearchPatients filters the contact list by query.
func (s *ContactService) SearchPatients(ctx context.Context, session models.Session, query string, fuzzy bool) (*ContactSet, error) {
	set, err := s.ListContacts(ctx, session)
	if err != nil {
		return nil, err
	}
	if fuzzy {
		return &ContactSet{Contacts: RankContacts(set.Contacts, query), Sample: set.Sample}, nil
	}
	return &ContactSet{Contacts: FilterContacts(set.Contacts, query), Sample: set.Sample}, nil
}

func (s *ContactService) calculate(ctx context.Context, contacts []models.Contact) models.Analytics {
	_, span := observability.StartSpan(ctx, "Aggregator.Calculate", attribute.Int("contacts.count", len(contacts)))
	defer span.End()
	return s.aggregator.Calculate(contacts)
}

func (s *ContactService) sampleSet(ctx context.Context, operation string) *ContactSet {
	s.metrics.RecordSample(ctx, operation)
	return &ContactSet{Contacts: SampleContacts(s.now(), s.normalizer.policy, s.normalizer.loc), Sample: true}
}

// partitionContacts keeps the session doctor's contacts when partitioning is
// on. Contacts without a doctorId belong to nobody.
func (s *ContactService) partitionContacts(contacts []models.Contact, session models.Session) []models.Contact {
	if !s.partition {
		return contacts
	}
	out := contacts[:0:0]
	for _, c := range contacts {
		if c.DoctorID != "" && c.DoctorID == session.DoctorID {
			out = append(out, c)
		}
	}
	return out
}

// classifyFetchError maps a source failure onto the error taxonomy: deadline
// overruns become Timeout, untyped failures External.
func classifyFetchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("contact store did not respond in time", err)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewExternalError("contact store request failed", err)
}
