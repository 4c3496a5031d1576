package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dataset-review-api/config"
	"dataset-review-api/models"
	"dataset-review-api/services"
	"dataset-review-api/utils"
)

// respondServiceError maps the services error kinds to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsNotAuthorized(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateDataset creates a new dataset. Whatever visibility is requested, new
// datasets start private and pending review.
func CreateDataset(c *gin.Context) {
	type CreateRequest struct {
		Title      string  `json:"title" binding:"required"`
		Notes      *string `json:"notes"`
		Visibility string  `json:"visibility"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visibility := models.VisibilityPrivate
	if req.Visibility != "" {
		parsed, ok := utils.ParseVisibility(req.Visibility)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "visibility must be private or public"})
			return
		}
		visibility = parsed
	}

	datasetService := services.NewDatasetService(config.DB)
	dataset, err := datasetService.Create(actorFromContext(c), services.CreateDatasetInput{
		Title:      utils.SanitizeInput(req.Title),
		Notes:      req.Notes,
		Visibility: visibility,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Dataset created and submitted for review",
		"dataset": dataset,
	})
}

// GetDataset returns a single dataset the caller may see
func GetDataset(c *gin.Context) {
	datasetService := services.NewDatasetService(config.DB)
	dataset, err := datasetService.Get(actorFromContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataset": dataset})
}

// ListDatasetsForReview returns the review queue, optionally filtered by
// review_status (reviewers only)
func ListDatasetsForReview(c *gin.Context) {
	var status models.ReviewStatus
	if raw := c.Query("review_status"); raw != "" {
		parsed, ok := utils.ParseReviewStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review_status filter"})
			return
		}
		status = parsed
	}

	datasetService := services.NewDatasetService(config.DB)
	datasets, err := datasetService.ListForReview(actorFromContext(c), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets":    datasets,
		"total_count": len(datasets),
	})
}

// UpdateDataset applies edits to a dataset through the review workflow's
// update triggers
func UpdateDataset(c *gin.Context) {
	type UpdateRequest struct {
		Title      *string `json:"title"`
		Notes      *string `json:"notes"`
		Visibility *string `json:"visibility"`
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := services.ChangeSet{Notes: req.Notes}
	if req.Title != nil {
		title := utils.SanitizeInput(*req.Title)
		changes.Title = &title
	}
	if req.Visibility != nil {
		parsed, ok := utils.ParseVisibility(*req.Visibility)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "visibility must be private or public"})
			return
		}
		changes.Visibility = &parsed
	}

	datasetService := services.NewDatasetService(config.DB)
	dataset, err := datasetService.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dataset updated",
		"dataset": dataset,
	})
}

// ReviewDataset records an approve/reject decision (reviewers only)
func ReviewDataset(c *gin.Context) {
	type ReviewRequest struct {
		Decision string `json:"decision" binding:"required"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, ok := utils.ParseReviewStatus(req.Decision)
	if !ok || !decision.IsDecision() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approved or rejected"})
		return
	}

	datasetService := services.NewDatasetService(config.DB)
	dataset, err := datasetService.Review(c.Request.Context(), actorFromContext(c), c.Param("id"), decision)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Dataset has been rejected"
	if decision == models.ReviewStatusApproved {
		message = "Dataset has been approved successfully"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"dataset": dataset,
	})
}
