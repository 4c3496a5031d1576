// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"

	"dataset-review-api/models"
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ParseVisibility maps a request string onto a Visibility value
func ParseVisibility(raw string) (models.Visibility, bool) {
	switch models.Visibility(strings.ToLower(strings.TrimSpace(raw))) {
	case models.VisibilityPrivate:
		return models.VisibilityPrivate, true
	case models.VisibilityPublic:
		return models.VisibilityPublic, true
	}
	return "", false
}

// ParseReviewStatus maps a request string onto a ReviewStatus value
func ParseReviewStatus(raw string) (models.ReviewStatus, bool) {
	switch models.ReviewStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.ReviewStatusPending:
		return models.ReviewStatusPending, true
	case models.ReviewStatusApproved:
		return models.ReviewStatusApproved, true
	case models.ReviewStatusRejected:
		return models.ReviewStatusRejected, true
	case models.ReviewStatusNone:
		return models.ReviewStatusNone, true
	}
	return "", false
}
