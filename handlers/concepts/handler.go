package concepts

import (
	"net/http"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/services/eligibility"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type conceptInput struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Amount      string           `json:"amount" binding:"required"`
	AppliesTo   models.AppliesTo `json:"appliesTo" binding:"required"`
	StartDate   time.Time        `json:"startDate" binding:"required"`
	EndDate     *time.Time       `json:"endDate"`
	UserIDs     []int64          `json:"userIds"`
	CareerIDs   []int64          `json:"careerIds"`
	Semesters   []string         `json:"semesters"`
	Exceptions  []int64          `json:"exceptions"`
	Tags        []string         `json:"tags"`
}

// @Summary Create a payment concept
// @Description Create a billable obligation definition (admin only)
// @Tags concepts
// @Accept json
// @Produce json
// @Param concept body conceptInput true "Concept definition"
// @Security BearerAuth
// @Success 201 {object} models.PaymentConcept
// @Failure 400 {object} map[string]string "error: validation message"
// @Router /concepts [post]
func CreateConcept(c *gin.Context) {
	var input conceptInput
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	concept, err := models.NewPaymentConcept(input.Name, input.Description, input.Amount, input.AppliesTo, input.StartDate, input.EndDate)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}
	concept.UserIDs = pq.Int64Array(input.UserIDs)
	concept.CareerIDs = pq.Int64Array(input.CareerIDs)
	concept.Semesters = pq.StringArray(input.Semesters)
	concept.Exceptions = pq.Int64Array(input.Exceptions)
	concept.Tags = pq.StringArray(input.Tags)

	if err := db.DB.Create(concept).Error; err != nil {
		utils.LogError(err, "Error creating concept in CreateConcept")
		utils.SendError(c, http.StatusInternalServerError, "Error creating the concept")
		return
	}

	utils.LogSuccess("Concept created: " + concept.Name)
	c.JSON(http.StatusCreated, concept)
}

// @Summary List payment concepts
// @Tags concepts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PaymentConcept
// @Router /concepts [get]
func GetAllConcepts(c *gin.Context) {
	var concepts []models.PaymentConcept
	if err := db.DB.Where("status <> ?", models.ConceptDeleted).Order("created_at desc").Find(&concepts).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Error fetching concepts")
		return
	}
	c.JSON(http.StatusOK, concepts)
}

// statusTransitions maps the admin actions onto concept statuses. Deletion
// is soft: the row stays as a historical record.
var statusTransitions = map[string]models.ConceptStatus{
	"finalize": models.ConceptFinalized,
	"disable":  models.ConceptDisabled,
	"enable":   models.ConceptActive,
	"delete":   models.ConceptDeleted,
}

// @Summary Change a concept's status
// @Description Finalize, disable, re-enable or soft-delete a concept (admin only)
// @Tags concepts
// @Produce json
// @Param id path string true "Concept ID"
// @Param action path string true "finalize | disable | enable | delete"
// @Security BearerAuth
// @Success 200 {object} models.PaymentConcept
// @Failure 400 {object} map[string]string "error: unknown action"
// @Failure 404 {object} map[string]string "error: Concept not found"
// @Router /concepts/{id}/{action} [patch]
func UpdateConceptStatus(c *gin.Context) {
	newStatus, ok := statusTransitions[c.Param("action")]
	if !ok {
		utils.SendError(c, http.StatusBadRequest, "Unknown action: "+c.Param("action"))
		return
	}

	var concept models.PaymentConcept
	if err := db.DB.First(&concept, "id = ?", c.Param("id")).Error; err != nil {
		utils.SendError(c, http.StatusNotFound, "Concept not found")
		return
	}

	if err := db.DB.Model(&concept).Update("status", newStatus).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Error updating the concept")
		return
	}

	utils.LogSuccess("Concept " + concept.ID + " moved to " + string(newStatus))
	c.JSON(http.StatusOK, concept)
}

type candidateQuery struct {
	UserID   int64    `form:"userId" binding:"required"`
	Role     string   `form:"role"`
	CareerID *int64   `form:"careerId"`
	Semester string   `form:"semester"`
	Tags     []string `form:"tags"`
}

// @Summary Check whether a concept applies to a candidate
// @Description Eligibility query used by the billing-assignment layer
// @Tags concepts
// @Produce json
// @Param id path string true "Concept ID"
// @Param userId query int true "Candidate user id"
// @Security BearerAuth
// @Success 200 {object} map[string]bool "applies: true/false"
// @Failure 404 {object} map[string]string "error: Concept not found"
// @Router /concepts/{id}/applies [get]
func CheckApplies(c *gin.Context) {
	var query candidateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid candidate attributes: "+err.Error())
		return
	}

	var concept models.PaymentConcept
	if err := db.DB.First(&concept, "id = ?", c.Param("id")).Error; err != nil {
		utils.SendError(c, http.StatusNotFound, "Concept not found")
		return
	}

	candidate := eligibility.Candidate{
		UserID:   query.UserID,
		Role:     models.Role(query.Role),
		CareerID: query.CareerID,
		Semester: query.Semester,
	}
	for _, tag := range query.Tags {
		candidate.Tags = append(candidate.Tags, models.ApplicantTag(tag))
	}

	c.JSON(http.StatusOK, gin.H{"applies": eligibility.Applies(&concept, candidate, time.Now())})
}
