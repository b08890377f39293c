package controllers

import (
	"net/http"
	"strconv"
	"time"

	"journal-management-api/services"

	"github.com/gin-gonic/gin"
)

type issueRequest struct {
	JournalID     int        `json:"journal_id"`
	Volume        *int       `json:"volume"`
	Number        *string    `json:"number"`
	Year          int        `json:"year"`
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	PublishedDate *time.Time `json:"published_date"`
	IsPublished   bool       `json:"is_published"`
	AccessStatus  string     `json:"access_status"`
}

func (r *issueRequest) toInput() *services.IssueInput {
	access := r.AccessStatus
	if access == "" {
		access = "open"
	}
	return &services.IssueInput{
		JournalID:     r.JournalID,
		Volume:        r.Volume,
		Number:        r.Number,
		Year:          r.Year,
		Title:         r.Title,
		Description:   r.Description,
		PublishedDate: r.PublishedDate,
		IsPublished:   r.IsPublished,
		AccessStatus:  access,
	}
}

// GetJournalIssues lists a journal's issues with derived statuses.
func GetJournalIssues(c *gin.Context) {
	journalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || journalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid journal ID"})
		return
	}

	service := services.NewIssueService(nil)
	issues, err := service.ListIssues(c.Request.Context(), journalID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issues":  issues,
		"total":   len(issues),
	})
}

// CreateIssue creates a journal issue, enforcing the duplicate guard.
func CreateIssue(c *gin.Context) {
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	service := services.NewIssueService(nil)
	issue, err := service.CreateIssue(c.Request.Context(), req.toInput())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"issue":   issue,
		"status":  services.DeriveIssueStatus(issue),
	})
}

// UpdateIssue updates a journal issue, re-running the duplicate guard.
func UpdateIssue(c *gin.Context) {
	issueID, err := strconv.Atoi(c.Param("id"))
	if err != nil || issueID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	service := services.NewIssueService(nil)
	issue, err := service.UpdateIssue(c.Request.Context(), issueID, req.toInput())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issue":   issue,
		"status":  services.DeriveIssueStatus(issue),
	})
}
