package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dataset-review-api/config"
	"dataset-review-api/services"
)

// GrantReviewer grants the reviewer capability to a user (admin only)
func GrantReviewer(c *gin.Context) {
	reviewerService := services.NewReviewerService(config.DB)
	capability, err := reviewerService.Grant(actorFromContext(c), c.Param("user"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Reviewer permission granted",
		"capability": capability,
	})
}

// RevokeReviewer revokes the reviewer capability from a user (admin only).
// Revoking a user that never held the capability is a success no-op.
func RevokeReviewer(c *gin.Context) {
	reviewerService := services.NewReviewerService(config.DB)
	capability, err := reviewerService.Revoke(actorFromContext(c), c.Param("user"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Reviewer permission revoked",
		"capability": capability,
	})
}

// CheckReviewer reports whether a user currently counts as a reviewer
func CheckReviewer(c *gin.Context) {
	reviewerService := services.NewReviewerService(config.DB)

	c.JSON(http.StatusOK, gin.H{
		"user":        c.Param("user"),
		"is_reviewer": reviewerService.IsReviewer(c.Param("user")),
	})
}

// ListReviewers lists all active reviewers, admins included (admin only)
func ListReviewers(c *gin.Context) {
	reviewerService := services.NewReviewerService(config.DB)
	reviewers, err := reviewerService.ListReviewers()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviewers":   reviewers,
		"total_count": len(reviewers),
	})
}
