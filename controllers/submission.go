package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"journal-management-api/config"
	"journal-management-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetSubmissions lists submissions, optionally filtered by journal and
// status, for the editorial queue views.
func GetSubmissions(c *gin.Context) {
	query := config.DB.Preload("Submitter").Preload("Editor").Preload("Journal")

	if journalID, err := strconv.Atoi(c.Query("journal_id")); err == nil && journalID > 0 {
		query = query.Where("journal_id = ?", journalID)
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var submissions []models.Submission
	if err := query.Order("last_modified DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns one submission with its relations.
func GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("Submitter").Preload("Editor").
		Preload("Journal").Preload("Section").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}
