package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/validation"
)

type memoryReports struct {
	mu      sync.Mutex
	items   []models.Report
	deleted []uuid.UUID
}

func (m *memoryReports) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ListingID == r.ListingID && existing.Fingerprint == r.Fingerprint {
			return repository.ErrDuplicateReport
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.items = append(m.items, *r)
	return nil
}

func (m *memoryReports) ListWithListings(_ context.Context) ([]models.ReportWithListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ReportWithListing, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, models.ReportWithListing{Report: r})
	}
	return out, nil
}

func (m *memoryReports) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.items {
		if r.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return repository.ErrReportNotFound
}

func newReportFixture() (*ReportService, *memoryReports, *memoryListings, *recordingNotifier) {
	reports := &memoryReports{}
	listings := newMemoryListings()
	notifier := &recordingNotifier{}
	svc := NewReportService(reports, listings, NewFingerprinter("test-fingerprint-key"), notifier)
	return svc, reports, listings, notifier
}

func TestFingerprinter(t *testing.T) {
	f := NewFingerprinter("key")

	a := f.Sum("10.0.0.1", "Firefox")
	assert.Len(t, a, 64)
	assert.Equal(t, a, f.Sum("10.0.0.1", "Firefox"))
	assert.NotEqual(t, a, f.Sum("10.0.0.2", "Firefox"))
	assert.NotEqual(t, a, NewFingerprinter("other").Sum("10.0.0.1", "Firefox"))
	assert.NotContains(t, a, "10.0.0.1")

	long := NewFingerprinter(strings.Repeat("k", 100))
	assert.Len(t, long.Sum("ip", "ua"), 64)
}

func TestReportService_Create(t *testing.T) {
	svc, reports, listings, notifier := newReportFixture()
	stored := listings.put(sampleListing(uuid.New(), models.ListingStatusActive))

	report, err := svc.Create(context.Background(), nil, ReportInput{
		ListingID: stored.ID,
		Reason:    models.ReportReasonFraud,
		Details:   ptr("  asks for money upfront  "),
		ClientIP:  "10.0.0.1",
		UserAgent: "Firefox",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.ID)
	require.NotNil(t, report.Details)
	assert.Equal(t, "asks for money upfront", *report.Details)
	assert.Nil(t, report.ReporterID)
	assert.NotEmpty(t, report.Fingerprint)
	assert.Len(t, reports.items, 1)
	assert.Equal(t, []string{EventReportCreated}, notifier.admins)
}

func TestReportService_Create_RecordsReporter(t *testing.T) {
	svc, _, listings, _ := newReportFixture()
	stored := listings.put(sampleListing(uuid.New(), models.ListingStatusActive))
	sess := userSession()

	report, err := svc.Create(context.Background(), sess, ReportInput{
		ListingID: stored.ID,
		Reason:    models.ReportReasonOther,
		Details:   ptr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, report.ReporterID)
	assert.Equal(t, sess.UserID, *report.ReporterID)
	assert.Nil(t, report.Details)
}

func TestReportService_Create_DuplicateFromSameVisitor(t *testing.T) {
	svc, _, listings, _ := newReportFixture()
	stored := listings.put(sampleListing(uuid.New(), models.ListingStatusActive))
	in := ReportInput{ListingID: stored.ID, Reason: models.ReportReasonOverpriced, ClientIP: "1.2.3.4", UserAgent: "UA"}

	_, err := svc.Create(context.Background(), nil, in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), nil, in)
	assert.ErrorIs(t, err, apperror.ErrDuplicateReport)

	in.ClientIP = "5.6.7.8"
	_, err = svc.Create(context.Background(), nil, in)
	assert.NoError(t, err)
}

func TestReportService_Create_Validation(t *testing.T) {
	svc, reports, listings, _ := newReportFixture()
	stored := listings.put(sampleListing(uuid.New(), models.ListingStatusActive))

	_, err := svc.Create(context.Background(), nil, ReportInput{
		ListingID: stored.ID,
		Reason:    "spam",
		Details:   ptr(strings.Repeat("ش", validation.MaxReportDetails+1)),
	})
	fields, ok := validation.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, validation.RuleInvalid, fields["reason"])
	assert.Equal(t, validation.RuleMax, fields["details"])
	assert.Empty(t, reports.items)

	_, err = svc.Create(context.Background(), nil, ReportInput{
		ListingID: stored.ID,
		Reason:    models.ReportReasonOther,
		Details:   ptr(strings.Repeat("ش", validation.MaxReportDetails)),
	})
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), nil, ReportInput{ListingID: uuid.New(), Reason: models.ReportReasonFraud})
	assert.ErrorIs(t, err, apperror.ErrListingNotFound)
}

func TestReportService_AdminOperations(t *testing.T) {
	svc, reports, listings, _ := newReportFixture()
	stored := listings.put(sampleListing(uuid.New(), models.ListingStatusActive))
	report, err := svc.Create(context.Background(), nil, ReportInput{ListingID: stored.ID, Reason: models.ReportReasonFraud})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), userSession())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), nil, report.ID), apperror.ErrUnauthenticated)

	list, err := svc.List(context.Background(), adminSession())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), adminSession(), report.ID))
	assert.Equal(t, []uuid.UUID{report.ID}, reports.deleted)
	assert.ErrorIs(t, svc.Delete(context.Background(), adminSession(), report.ID), apperror.ErrReportNotFound)
}
