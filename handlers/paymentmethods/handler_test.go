package paymentmethods

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

func withUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func TestCreatePaymentMethod_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(uint(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(7, "alumno@cbta71.edu.mx"))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "payment_methods" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("method-uuid"))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/payment-methods", withUser(7), CreatePaymentMethod)

	methodData := map[string]interface{}{
		"stripePaymentMethodId": "pm_123",
		"brand":                 "visa",
		"last4":                 "4242",
		"expMonth":              12,
		"expYear":               2030,
	}
	jsonData, _ := json.Marshal(methodData)

	req, _ := http.NewRequest(http.MethodPost, "/payment-methods", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var method models.PaymentMethod
	json.Unmarshal(resp.Body.Bytes(), &method)
	assert.Equal(t, "pm_123", method.StripePaymentMethodId)
	assert.Equal(t, "4242", method.Last4)
}

func TestCreatePaymentMethod_TokenRequired(t *testing.T) {
	_, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := testutils.SetupTestRouter()
	r.POST("/payment-methods", withUser(7), CreatePaymentMethod)

	jsonData, _ := json.Marshal(map[string]interface{}{"brand": "visa"})

	req, _ := http.NewRequest(http.MethodPost, "/payment-methods", bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeletePaymentMethod_NotFound(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "payment_methods" WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing-uuid", uint(7), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	r := testutils.SetupTestRouter()
	r.DELETE("/payment-methods/:id", withUser(7), DeletePaymentMethod)

	req, _ := http.NewRequest(http.MethodDelete, "/payment-methods/missing-uuid", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
