package controllers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"dataset-review-api/config"
	"dataset-review-api/middleware"
	"dataset-review-api/models"
	"dataset-review-api/services"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

// actorFromContext builds the explicit actor identity passed to the services
// layer from the values AuthMiddleware stored on the request.
func actorFromContext(c *gin.Context) services.Actor {
	userID, _ := c.Get("userID")
	email, _ := c.Get("email")
	isAdmin, _ := c.Get("isAdmin")

	actor := services.Actor{}
	if id, ok := userID.(int); ok {
		actor.UserID = id
	}
	if e, ok := email.(string); ok {
		actor.Email = e
	}
	if a, ok := isAdmin.(bool); ok {
		actor.IsAdmin = a
	}
	return actor
}

// Login handles user authentication
func Login(c *gin.Context) {
	var req LoginRequest

	// Bind request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Find user by email
	var user models.User
	if err := config.DB.
		Where("email = ? AND delete_at IS NULL", req.Email).
		First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.IsActive() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is not active"})
		return
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	// Generate JWT token
	token, err := generateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// Response
	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// GetProfile returns current user profile
func GetProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := config.DB.
		Where("user_id = ?", userID).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	reviewerService := services.NewReviewerService(config.DB)

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"is_reviewer": reviewerService.IsReviewer(strconv.Itoa(user.UserID)),
	})
}

// generateToken creates a JWT token for the user
func generateToken(user models.User) (string, error) {
	expireHours := 24
	if h, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS")); err == nil && h > 0 {
		expireHours = h
	}

	claims := middleware.Claims{
		UserID:  user.UserID,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
