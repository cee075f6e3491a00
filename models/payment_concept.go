package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ConceptStatus string

const (
	ConceptActive    ConceptStatus = "ACTIVE"
	ConceptDisabled  ConceptStatus = "DISABLED"
	ConceptFinalized ConceptStatus = "FINALIZED"
	ConceptDeleted   ConceptStatus = "DELETED"
)

type AppliesTo string

const (
	AppliesToAll      AppliesTo = "ALL"
	AppliesToStudents AppliesTo = "STUDENTS"
	AppliesByCareer   AppliesTo = "BY_CAREER"
	AppliesBySemester AppliesTo = "BY_SEMESTER"
	AppliesByTag      AppliesTo = "BY_TAG"
)

// PaymentConcept is a billable obligation definition: what is charged, to
// whom it applies and during which window. The amount is kept as an exact
// decimal string, never a float.
type PaymentConcept struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string         `json:"name" binding:"required" gorm:"not null"`
	Description string         `json:"description"`
	Status      ConceptStatus  `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     *time.Time     `json:"endDate"`
	Amount      string         `json:"amount" gorm:"type:numeric(12,2);not null"`
	AppliesTo   AppliesTo      `json:"appliesTo" gorm:"type:varchar(20);default:'ALL'"`
	UserIDs     pq.Int64Array  `json:"userIds" gorm:"type:bigint[]"`
	CareerIDs   pq.Int64Array  `json:"careerIds" gorm:"type:bigint[]"`
	Semesters   pq.StringArray `json:"semesters" gorm:"type:text[]"`
	Exceptions  pq.Int64Array  `json:"exceptions" gorm:"type:bigint[]"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewPaymentConcept validates the financial and temporal invariants before
// the concept ever reaches the database.
func NewPaymentConcept(name, description, amount string, appliesTo AppliesTo, startDate time.Time, endDate *time.Time) (*PaymentConcept, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("concept name cannot be empty")
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid concept amount %q: %w", amount, err)
	}
	if amt.IsNegative() {
		return nil, fmt.Errorf("concept amount cannot be negative: %s", amount)
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, fmt.Errorf("concept end date cannot precede start date")
	}
	switch appliesTo {
	case AppliesToAll, AppliesToStudents, AppliesByCareer, AppliesBySemester, AppliesByTag:
	default:
		return nil, fmt.Errorf("unknown applies_to mode: %s", appliesTo)
	}

	return &PaymentConcept{
		Name:        name,
		Description: description,
		Status:      ConceptActive,
		StartDate:   startDate,
		EndDate:     endDate,
		Amount:      amt.StringFixed(2),
		AppliesTo:   appliesTo,
	}, nil
}

func (pc *PaymentConcept) IsActive() bool    { return pc.Status == ConceptActive }
func (pc *PaymentConcept) IsDisabled() bool  { return pc.Status == ConceptDisabled }
func (pc *PaymentConcept) IsFinalized() bool { return pc.Status == ConceptFinalized }
func (pc *PaymentConcept) IsDeleted() bool   { return pc.Status == ConceptDeleted }

// IsExpired compares the end date against now at date granularity. A concept
// without an end date never expires.
func (pc *PaymentConcept) IsExpired(now time.Time) bool {
	if pc.EndDate == nil {
		return false
	}
	return truncateToDay(now).After(truncateToDay(*pc.EndDate))
}

// HasStarted is inclusive: the start date itself counts as started.
func (pc *PaymentConcept) HasStarted(now time.Time) bool {
	return !truncateToDay(now).Before(truncateToDay(pc.StartDate))
}

func (pc *PaymentConcept) HasUser(userID int64) bool {
	for _, id := range pc.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (pc *PaymentConcept) HasCareer(careerID int64) bool {
	for _, id := range pc.CareerIDs {
		if id == careerID {
			return true
		}
	}
	return false
}

// HasSemester normalizes both sides to string so a concept listing semesters
// [1,2,3] matches the candidate value "2" as well as 2.
func (pc *PaymentConcept) HasSemester(semester interface{}) bool {
	want := normalizeSemester(semester)
	if want == "" {
		return false
	}
	for _, s := range pc.Semesters {
		if s == want {
			return true
		}
	}
	return false
}

func (pc *PaymentConcept) HasTag(tag ApplicantTag) bool {
	for _, t := range pc.Tags {
		if t == string(tag) {
			return true
		}
	}
	return false
}

// HasExceptionForUser wins over every other rule: an excepted user never
// owes the concept, even when AppliesTo is ALL.
func (pc *PaymentConcept) HasExceptionForUser(userID int64) bool {
	for _, id := range pc.Exceptions {
		if id == userID {
			return true
		}
	}
	return false
}

func normalizeSemester(semester interface{}) string {
	switch v := semester.(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON numbers decode as float64
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
