package concepts

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func TestCreateConcept_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "payment_concepts" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("concept-uuid"))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/concepts", CreateConcept)

	conceptData := map[string]interface{}{
		"name":      "Inscripción semestral",
		"amount":    "1850.50",
		"appliesTo": "BY_SEMESTER",
		"startDate": "2025-08-01T00:00:00Z",
		"semesters": []string{"1", "2"},
	}
	jsonData, _ := json.Marshal(conceptData)

	req, _ := http.NewRequest(http.MethodPost, "/concepts", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var concept models.PaymentConcept
	json.Unmarshal(resp.Body.Bytes(), &concept)
	assert.Equal(t, "Inscripción semestral", concept.Name)
	assert.Equal(t, "1850.50", concept.Amount)
	assert.Equal(t, models.ConceptActive, concept.Status)
}

func TestCreateConcept_NegativeAmount(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.POST("/concepts", CreateConcept)

	conceptData := map[string]interface{}{
		"name":      "Credencial",
		"amount":    "-150.00",
		"appliesTo": "ALL",
		"startDate": "2025-08-01T00:00:00Z",
	}
	jsonData, _ := json.Marshal(conceptData)

	req, _ := http.NewRequest(http.MethodPost, "/concepts", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateConceptStatus_UnknownAction(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.PATCH("/concepts/:id/:action", UpdateConceptStatus)

	req, _ := http.NewRequest(http.MethodPatch, "/concepts/concept-uuid/archive", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateConceptStatus_Finalize(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "payment_concepts" WHERE id = \$1`).
		WithArgs("concept-uuid", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "amount", "status"}).
			AddRow("concept-uuid", "Inscripción", "1850.50", "ACTIVE"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_concepts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.PATCH("/concepts/:id/:action", UpdateConceptStatus)

	req, _ := http.NewRequest(http.MethodPatch, "/concepts/concept-uuid/finalize", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCheckApplies(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "payment_concepts" WHERE id = \$1`).
		WithArgs("concept-uuid", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "amount", "status", "applies_to", "start_date"}).
			AddRow("concept-uuid", "Inscripción", "1850.50", "ACTIVE", "ALL", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))

	r := testutils.SetupTestRouter()
	r.GET("/concepts/:id/applies", CheckApplies)

	req, _ := http.NewRequest(http.MethodGet, "/concepts/concept-uuid/applies?userId=15", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var body map[string]bool
	json.Unmarshal(resp.Body.Bytes(), &body)
	assert.True(t, body["applies"])
}
