package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/models"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// @Summary Register a new payer
// @Description Create a student or applicant account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.User true "User information"
// @Success 201 {object} map[string]interface{} "message: User created successfully, email: user email"
// @Failure 400 {object} map[string]interface{} "error: Invalid input"
// @Failure 409 {object} map[string]interface{} "error: Email already exists"
// @Failure 500 {object} map[string]interface{} "error: Error message"
// @Router /register [post]
func Register(c *gin.Context) {
	var user models.User

	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if !emailRegex.MatchString(user.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	hasLower := strings.ContainsAny(user.Password, "abcdefghijklmnopqrstuvwxyz")
	hasUpper := strings.ContainsAny(user.Password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasDigit := strings.ContainsAny(user.Password, "0123456789")
	if !hasLower || !hasUpper || !hasDigit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The password must contain at least one lowercase, one uppercase and one digit"})
		return
	}

	var existingUser models.User
	if err := db.DB.Where("email = ?", user.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already used"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error when checking the email existence"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error hashing the password"})
		return
	}

	user.Password = string(passwordHash)
	if user.Role != models.ApplicantRole {
		user.Role = models.StudentRole
	}
	user.Enable = true
	user.StripeCustomerId = ""

	if err := db.DB.Create(&user).Error; err != nil {
		utils.LogError(err, "Error creating user in Register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the user"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "User registered")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"email":   user.Email,
	})
}

// @Summary Log in
// @Description Authenticate a payer and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.UserLogin true "Credentials"
// @Success 200 {object} map[string]string "token: JWT"
// @Failure 401 {object} map[string]string "error: Invalid credentials"
// @Router /login [post]
func Login(c *gin.Context) {
	var credentials models.UserLogin

	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", credentials.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(credentials.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.Enable {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account disabled"})
		return
	}

	token, err := utils.GenerateJWT(user, 24)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Error generating JWT in Login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating the token"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "User logged in")
	c.JSON(http.StatusOK, gin.H{"token": token})
}
