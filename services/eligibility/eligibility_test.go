package eligibility

import (
	"testing"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

func activeConcept(appliesTo models.AppliesTo) *models.PaymentConcept {
	return &models.PaymentConcept{
		Name:      "Inscripción",
		Status:    models.ConceptActive,
		StartDate: now.AddDate(0, -1, 0),
		Amount:    "1850.00",
		AppliesTo: appliesTo,
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestApplies_AllMode(t *testing.T) {
	concept := activeConcept(models.AppliesToAll)

	assert.True(t, Applies(concept, Candidate{UserID: 1}, now))
}

func TestApplies_ExceptionBeatsAll(t *testing.T) {
	concept := activeConcept(models.AppliesToAll)
	concept.Exceptions = pq.Int64Array{1}
	concept.UserIDs = pq.Int64Array{1}

	assert.False(t, Applies(concept, Candidate{UserID: 1}, now))
	assert.True(t, Applies(concept, Candidate{UserID: 2}, now))
}

func TestApplies_InactiveConceptNeverApplies(t *testing.T) {
	for _, status := range []models.ConceptStatus{models.ConceptDisabled, models.ConceptFinalized, models.ConceptDeleted} {
		concept := activeConcept(models.AppliesToAll)
		concept.Status = status
		assert.False(t, Applies(concept, Candidate{UserID: 1}, now), "status %s", status)
	}
}

func TestApplies_WindowGates(t *testing.T) {
	concept := activeConcept(models.AppliesToAll)
	concept.StartDate = now.AddDate(0, 0, 1)
	assert.False(t, Applies(concept, Candidate{UserID: 1}, now))

	concept = activeConcept(models.AppliesToAll)
	past := now.AddDate(0, 0, -1)
	concept.EndDate = &past
	assert.False(t, Applies(concept, Candidate{UserID: 1}, now))
}

func TestApplies_StudentsMode(t *testing.T) {
	concept := activeConcept(models.AppliesToStudents)

	assert.True(t, Applies(concept, Candidate{UserID: 1, Role: models.StudentRole}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 2, Role: models.ApplicantRole}, now))
}

func TestApplies_ByCareer(t *testing.T) {
	concept := activeConcept(models.AppliesByCareer)
	concept.CareerIDs = pq.Int64Array{3, 4}

	assert.True(t, Applies(concept, Candidate{UserID: 1, CareerID: int64Ptr(3)}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 1, CareerID: int64Ptr(5)}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 1}, now))
}

func TestApplies_BySemesterCrossType(t *testing.T) {
	concept := activeConcept(models.AppliesBySemester)
	concept.Semesters = pq.StringArray{"1", "2", "3"}

	assert.True(t, Applies(concept, Candidate{UserID: 1, Semester: "2"}, now))
	assert.True(t, Applies(concept, Candidate{UserID: 1, Semester: 2}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 1, Semester: "6"}, now))
}

func TestApplies_ByTag(t *testing.T) {
	concept := activeConcept(models.AppliesByTag)
	concept.Tags = pq.StringArray{string(models.TagNewApplicant)}

	assert.True(t, Applies(concept, Candidate{UserID: 1, Tags: []models.ApplicantTag{models.TagNewApplicant}}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 1, Tags: []models.ApplicantTag{models.TagReentry}}, now))
	assert.False(t, Applies(concept, Candidate{UserID: 1}, now))
}

func TestApplies_AllowlistWinsOverMode(t *testing.T) {
	concept := activeConcept(models.AppliesByCareer)
	concept.CareerIDs = pq.Int64Array{3}
	concept.UserIDs = pq.Int64Array{99}

	// Not in the career, but explicitly allowlisted.
	assert.True(t, Applies(concept, Candidate{UserID: 99, CareerID: int64Ptr(8)}, now))
}

func TestCandidateFromUser(t *testing.T) {
	tag := models.TagTransfer
	user := models.User{
		Role:     models.ApplicantRole,
		CareerID: int64Ptr(4),
		Semester: "1",
		Tag:      &tag,
	}
	user.ID = 15

	candidate := CandidateFromUser(&user)

	assert.Equal(t, int64(15), candidate.UserID)
	assert.Equal(t, models.ApplicantRole, candidate.Role)
	assert.Equal(t, int64(4), *candidate.CareerID)
	assert.Equal(t, "1", candidate.Semester)
	assert.Equal(t, []models.ApplicantTag{models.TagTransfer}, candidate.Tags)
}
