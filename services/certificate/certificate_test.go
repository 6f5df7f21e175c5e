package certificate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lms/apperrors"
	"lms/cache"
	"lms/models"
	courseModels "lms/models/course"
	"lms/repository"
	"lms/services/grading"
	"lms/services/notification"
	"lms/services/render"
	"lms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Render(ctx context.Context, s render.Snapshot) (*render.Assets, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &render.Assets{
		DocumentURL: "/certificates/" + render.DocumentName(s.CertificateNumber),
		ImageURL:    "/certificates/" + render.ImageName(s.CertificateNumber),
	}, nil
}

type mapCache struct {
	entries map[string]courseModels.PublicCertificate
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]courseModels.PublicCertificate{}}
}

func (c *mapCache) Get(ctx context.Context, code string) (*courseModels.PublicCertificate, bool) {
	v, ok := c.entries[code]
	if !ok {
		return nil, false
	}
	return &v, true
}

func (c *mapCache) Set(ctx context.Context, code string, view courseModels.PublicCertificate) {
	c.entries[code] = view
}

func (c *mapCache) Delete(ctx context.Context, code string) {
	delete(c.entries, code)
}

var _ cache.VerificationCache = (*mapCache)(nil)

type fakeNotifier struct {
	sent []notification.Message
}

func (n *fakeNotifier) Notify(ctx context.Context, userID uint, msg notification.Message) error {
	n.sent = append(n.sent, msg)
	return nil
}

func newService(db *gorm.DB, r render.Renderer, c cache.VerificationCache, opts Options) *Service {
	courses := repository.NewCourseRepository(db)
	return NewService(
		repository.NewCertificateRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewUserRepository(db),
		courses,
		grading.NewGradeCalculator(repository.NewLessonProgressRepository(db)),
		grading.NewDurationEstimator(courses),
		r,
		c,
		opts,
		zap.NewNop(),
	)
}

func completedFixture(t *testing.T, db *gorm.DB, lessons ...testutil.LessonSpec) *testutil.Fixture {
	if len(lessons) == 0 {
		lessons = []testutil.LessonSpec{testutil.Video(600), testutil.Reading()}
	}
	f := testutil.Seed(t, db, lessons)
	f.CompleteEnrollment(t, db)
	return f
}

func countCertificates(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).Count(&n).Error)
	return n
}

func TestIssueIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	r := &fakeRenderer{}
	svc := newService(db, r, nil, Options{})
	ctx := context.Background()

	first, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)
	second, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
	assert.EqualValues(t, 1, countCertificates(t, db))
	assert.Equal(t, 1, r.calls)
	assert.Len(t, first.CertificateNumber, 12)
	assert.Len(t, first.VerificationCode, 16)
	require.NotNil(t, second.DocumentURL)
	assert.Equal(t, "/certificates/"+first.CertificateNumber+".pdf", *second.DocumentURL)
}

func TestIssueSnapshotsNamesAndDerivedValues(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db, testutil.Video(600), testutil.Reading(), testutil.Assessment())
	score := 80.0
	_, err := repository.NewLessonProgressRepository(db).Upsert(context.Background(), &courseModels.LessonProgress{
		EnrollmentID: f.Enrollment.ID, LessonID: f.Lessons[0][2].ID, Score: &score, Passed: true, Completed: true,
	}, []string{"score", "passed", "completed"})
	require.NoError(t, err)
	svc := newService(db, &fakeRenderer{}, nil, Options{})

	cert, err := svc.IssueForEnrollment(context.Background(), f.Enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cert.LearnerName)
	assert.Equal(t, "Analytical Engines", cert.CourseTitle)
	assert.Equal(t, "Babbage Institute", cert.PartnerName)
	require.NotNil(t, cert.Grade)
	assert.Equal(t, 80.0, *cert.Grade)
	require.NotNil(t, cert.DurationMinutes)
	assert.Equal(t, 20, *cert.DurationMinutes)
	assert.Equal(t, 0.33, *cert.DurationHours)

	// renaming the learner later does not touch the issued snapshot
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", f.User.ID).Update("name", "Augusta King").Error)
	again, err := svc.GetCertificate(context.Background(), f.User.ID, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", again.LearnerName)
}

func TestIssuePreconditions(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, []testutil.LessonSpec{testutil.Reading()})
	svc := newService(db, &fakeRenderer{}, nil, Options{})

	_, err := svc.IssueForEnrollment(context.Background(), f.Enrollment.ID)
	assert.ErrorIs(t, err, apperrors.ErrPreconditionFailed)

	_, err = svc.IssueForEnrollment(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualValues(t, 0, countCertificates(t, db))
}

func TestDistinctCodesAcrossEnrollments(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	numbers := map[string]bool{}
	codes := map[string]bool{}

	for i := 0; i < 5; i++ {
		f := completedFixture(t, db)
		cert, err := svc.IssueForEnrollment(context.Background(), f.Enrollment.ID)
		require.NoError(t, err)
		assert.False(t, numbers[cert.CertificateNumber])
		assert.False(t, codes[cert.VerificationCode])
		numbers[cert.CertificateNumber] = true
		codes[cert.VerificationCode] = true
	}
}

func TestCodeCollisionIsRedrawn(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	draws := []string{
		"AAAAAAAAAAAA", "BBBBBBBBBBBBBBBB", // first certificate
		"AAAAAAAAAAAA", "CCCCCCCCCCCCCCCC", // number collides
		"DDDDDDDDDDDD", "BBBBBBBBBBBBBBBB", // verification code collides
		"EEEEEEEEEEEE", "FFFFFFFFFFFFFFFF",
	}
	svc.newCode = func(n int) string {
		next := draws[0]
		draws = draws[1:]
		return next
	}

	a := completedFixture(t, db)
	b := completedFixture(t, db)

	first, err := svc.IssueForEnrollment(context.Background(), a.Enrollment.ID)
	require.NoError(t, err)
	second, err := svc.IssueForEnrollment(context.Background(), b.Enrollment.ID)
	require.NoError(t, err)

	assert.Equal(t, "AAAAAAAAAAAA", first.CertificateNumber)
	assert.Equal(t, "EEEEEEEEEEEE", second.CertificateNumber)
	assert.Equal(t, "FFFFFFFFFFFFFFFF", second.VerificationCode)
	assert.Empty(t, draws)
}

func TestCodeCollisionGivesUp(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	svc.newCode = func(n int) string { return strings.Repeat("A", n) }

	a := completedFixture(t, db)
	b := completedFixture(t, db)
	_, err := svc.IssueForEnrollment(context.Background(), a.Enrollment.ID)
	require.NoError(t, err)

	_, err = svc.IssueForEnrollment(context.Background(), b.Enrollment.ID)
	assert.Error(t, err)
	assert.EqualValues(t, 1, countCertificates(t, db))
}

func TestRenderFailureStillIssues(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	r := &fakeRenderer{err: errors.New("chromium down")}
	svc := newService(db, r, nil, Options{})
	ctx := context.Background()

	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)
	assert.NotZero(t, cert.ID)
	assert.Nil(t, cert.DocumentURL)
	assert.Nil(t, cert.ImageURL)

	// a later read fills the assets in once rendering works again
	r.err = nil
	got, err := svc.GetCertificate(ctx, f.User.ID, cert.ID)
	require.NoError(t, err)
	assert.True(t, got.HasAssets())

	stored, err := repository.NewCertificateRepository(db).GetByID(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasAssets())
}

func TestRegenerateAssets(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	r := &fakeRenderer{}
	svc := newService(db, r, nil, Options{})
	ctx := context.Background()

	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	regenerated, err := svc.RegenerateAssets(ctx, cert.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
	assert.Equal(t, *cert.ImageURL, *regenerated.ImageURL)

	_, err = svc.RegenerateAssets(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	r.err = errors.New("template broken")
	_, err = svc.RegenerateAssets(ctx, cert.ID)
	assert.Error(t, err)
}

func TestLookupByVerificationCode(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", f.User.ID).Update("is_identity_verified", true).Error)
	c := newMapCache()
	svc := newService(db, &fakeRenderer{}, c, Options{})
	ctx := context.Background()

	_, err := svc.LookupByVerificationCode(ctx, "0000000000000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	view, err := svc.LookupByVerificationCode(ctx, " "+strings.ToLower(cert.VerificationCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, cert.CertificateNumber, view.CertificateNumber)
	assert.Equal(t, "Ada Lovelace", view.LearnerName)
	assert.True(t, view.IdentityVerified)
	assert.Contains(t, c.entries, cert.VerificationCode)

	_, err = svc.Revoke(ctx, cert.ID)
	require.NoError(t, err)
	assert.NotContains(t, c.entries, cert.VerificationCode)

	_, err = svc.LookupByVerificationCode(ctx, cert.VerificationCode)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetCertificateChecksOwner(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	other := testutil.Seed(t, db)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	ctx := context.Background()

	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	_, err = svc.GetCertificate(ctx, other.User.ID, cert.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.GetCertificate(ctx, f.User.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := svc.ListCertificates(ctx, other.User.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReadPathBackfillsDerivedFields(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db, testutil.Video(600), testutil.Assessment(), testutil.Assessment())
	ctx := context.Background()
	progress := repository.NewLessonProgressRepository(db)
	for i, s := range []float64{70, 91} {
		score := s
		_, err := progress.Upsert(ctx, &courseModels.LessonProgress{
			EnrollmentID: f.Enrollment.ID, LessonID: f.Lessons[0][i+1].ID, Score: &score,
		}, []string{"score"})
		require.NoError(t, err)
	}

	// a certificate from before grades and durations were recorded
	legacy := &courseModels.Certificate{
		UserID: f.User.ID, CourseID: f.Course.ID, EnrollmentID: f.Enrollment.ID,
		CertificateNumber: "0123456789AB", VerificationCode: "0123456789ABCDEF",
		LearnerName: "Ada Lovelace", CourseTitle: "Analytical Engines", IssuedAt: time.Now(),
	}
	require.NoError(t, db.Create(legacy).Error)

	svc := newService(db, &fakeRenderer{}, nil, Options{})
	list, err := svc.ListCertificates(ctx, f.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Grade)
	assert.Equal(t, 80.5, *list[0].Grade)
	require.NotNil(t, list[0].DurationMinutes)
	assert.Equal(t, 20, *list[0].DurationMinutes)
	assert.True(t, list[0].HasAssets())

	stored, err := repository.NewCertificateRepository(db).GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Grade)
	assert.Equal(t, 80.5, *stored.Grade)
	assert.Equal(t, 0.33, *stored.DurationHours)
}

func TestReissueCompleted(t *testing.T) {
	db := testutil.NewDB(t)
	withCert := completedFixture(t, db)
	withoutCert := completedFixture(t, db)
	testutil.Seed(t, db, []testutil.LessonSpec{testutil.Reading()}) // not completed
	ctx := context.Background()

	failing := &fakeRenderer{err: errors.New("offline")}
	_, err := newService(db, failing, nil, Options{}).IssueForEnrollment(ctx, withCert.Enrollment.ID)
	require.NoError(t, err)

	r := &fakeRenderer{}
	report, err := newService(db, r, nil, Options{}).ReissueCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReissueReport{Issued: 1, Skipped: 1}, *report)
	assert.Equal(t, 1, r.calls)

	existing, err := repository.NewCertificateRepository(db).GetByUserAndCourse(ctx, withoutCert.User.ID, withoutCert.Course.ID)
	require.NoError(t, err)
	assert.True(t, existing.HasAssets())

	report, err = newService(db, r, nil, Options{RenderMissingOnReissue: true}).ReissueCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReissueReport{Rerendered: 1, Skipped: 1}, *report)

	report, err = newService(db, r, nil, Options{RenderMissingOnReissue: true}).ReissueCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReissueReport{Skipped: 2}, *report)
	assert.EqualValues(t, 2, countCertificates(t, db))
}

func TestExportIssued(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	ctx := context.Background()
	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportIssued(ctx, &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(wb.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Certificate Number", rows[0][0])
	assert.Equal(t, cert.CertificateNumber, rows[1][0])
	assert.Equal(t, "Ada Lovelace", rows[1][2])
	assert.Equal(t, "FALSE", strings.ToUpper(rows[1][8]))
}

func TestCompletionNotifierLinksCertificate(t *testing.T) {
	db := testutil.NewDB(t)
	f := completedFixture(t, db)
	svc := newService(db, &fakeRenderer{}, nil, Options{})
	ctx := context.Background()
	cert, err := svc.IssueForEnrollment(ctx, f.Enrollment.ID)
	require.NoError(t, err)

	n := &fakeNotifier{}
	cn := NewCompletionNotifier(repository.NewCertificateRepository(db), repository.NewCourseRepository(db), n, "https://lms.example.com")
	err = cn.HandleCourseCompleted(ctx, completedEvent(f))
	require.NoError(t, err)

	require.Len(t, n.sent, 1)
	assert.Equal(t, models.NotificationCompletion, n.sent[0].Type)
	assert.Equal(t, "https://lms.example.com/verify/"+cert.VerificationCode, n.sent[0].Link)
	assert.Equal(t, *cert.ImageURL, n.sent[0].ImageURL)
}
