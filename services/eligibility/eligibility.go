// Package eligibility decides whether a payment concept applies to a given
// payer. The predicates live on the concept entity; the resolution order
// (exception first, then mode dispatch) is enforced here.
package eligibility

import (
	"time"

	"github.com/AngelLY12/CBTa71-sub002/models"
)

// Candidate carries the payer attributes supplied by the identity layer.
// Semester accepts a number or a numeric string; both compare equal.
type Candidate struct {
	UserID   int64
	Role     models.Role
	CareerID *int64
	Semester interface{}
	Tags     []models.ApplicantTag
}

// CandidateFromUser adapts a stored user into an eligibility candidate.
func CandidateFromUser(user *models.User) Candidate {
	c := Candidate{
		UserID:   int64(user.ID),
		Role:     user.Role,
		CareerID: user.CareerID,
		Semester: user.Semester,
	}
	if user.Tag != nil {
		c.Tags = []models.ApplicantTag{*user.Tag}
	}
	return c
}

// Applies reports whether the concept currently bills the candidate.
// Exceptions always win, even over ALL.
func Applies(concept *models.PaymentConcept, candidate Candidate, now time.Time) bool {
	if !concept.IsActive() || !concept.HasStarted(now) || concept.IsExpired(now) {
		return false
	}
	if concept.HasExceptionForUser(candidate.UserID) {
		return false
	}
	if concept.HasUser(candidate.UserID) {
		return true
	}

	switch concept.AppliesTo {
	case models.AppliesToAll:
		return true
	case models.AppliesToStudents:
		return candidate.Role == models.StudentRole
	case models.AppliesByCareer:
		return candidate.CareerID != nil && concept.HasCareer(*candidate.CareerID)
	case models.AppliesBySemester:
		return concept.HasSemester(candidate.Semester)
	case models.AppliesByTag:
		for _, tag := range candidate.Tags {
			if concept.HasTag(tag) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
