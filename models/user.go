package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	AdminRole     Role = "ADMIN"
	StudentRole   Role = "STUDENT"
	ApplicantRole Role = "APPLICANT"
)

type ApplicantTag string

const (
	TagNewApplicant ApplicantTag = "NEW_APPLICANT"
	TagReentry      ApplicantTag = "REENTRY"
	TagTransfer     ApplicantTag = "TRANSFER"
)

// User is the payer (student or applicant). Career, semester and tag feed
// the PaymentConcept eligibility rules.
type User struct {
	gorm.Model
	Email            string        `json:"email" binding:"required,email"`
	Password         string        `json:"password" binding:"required,min=6"`
	FullName         string        `json:"fullName"`
	Role             Role          `json:"role" gorm:"type:varchar(20);default:'STUDENT'"`
	CareerID         *int64        `json:"careerId"`
	Semester         string        `json:"semester"`
	Tag              *ApplicantTag `json:"tag" gorm:"type:varchar(30)"`
	StripeCustomerId string        `json:"stripeCustomerId"`
	Enable           bool          `json:"enable"`
	EmailVerifiedAt  *time.Time    `json:"emailVerifiedAt"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
