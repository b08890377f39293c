package controllers

import (
	"net/http"
	"strconv"

	"journal-management-api/services"
	"journal-management-api/utils"

	"github.com/gin-gonic/gin"
)

// DecideSubmission records an editorial decision for a submission.
func DecideSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Comments string `json:"comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	pipeline := services.NewPipeline(nil, nil)
	response := pipeline.Decide(c.Request.Context(), &services.DecisionInput{
		SubmissionID: submissionID,
		DecisionType: req.Decision,
		Comments:     req.Comments,
		EditorID:     userID.(int),
	})

	renderPipeline(c, response)
}

// GetSubmissionDecisions lists the decision history for a submission.
func GetSubmissionDecisions(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	service := services.NewDecisionService(nil, nil)
	decisions, err := service.ListDecisions(c.Request.Context(), submissionID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"decisions": decisions,
		"total":     len(decisions),
	})
}

// PublishSubmission converts an accepted submission into an article,
// optionally registering a DOI in the same request.
func PublishSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req struct {
		IssueID     *int    `json:"issue_id"`
		Volume      *int    `json:"volume"`
		IssueNumber *string `json:"issue_number"`
		Year        *int    `json:"year"`
		Pages       *string `json:"pages"`
		DOI         *string `json:"doi"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.DOI != nil {
		normalized := utils.NormalizeDOI(*req.DOI)
		if !utils.ValidDOI(normalized) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid DOI"})
			return
		}
		req.DOI = &normalized
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	pipeline := services.NewPipeline(nil, nil)
	response := pipeline.Publish(c.Request.Context(), &services.PublishInput{
		SubmissionID: submissionID,
		EditorID:     userID.(int),
		IssueID:      req.IssueID,
		Volume:       req.Volume,
		IssueNumber:  req.IssueNumber,
		Year:         req.Year,
		Pages:        req.Pages,
		DOI:          req.DOI,
	})

	renderPipeline(c, response)
}

// RetryDOIRegistration re-attempts DOI registration for an article. Safe to
// call repeatedly; each attempt updates the same registration row.
func RetryDOIRegistration(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	var req struct {
		DOI string `json:"doi"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.DOI != "" {
		req.DOI = utils.NormalizeDOI(req.DOI)
		if !utils.ValidDOI(req.DOI) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid DOI"})
			return
		}
	}

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	pipeline := services.NewPipeline(nil, nil)
	response := pipeline.RetryDOI(c.Request.Context(), &services.RegisterDOIInput{
		ArticleID: articleID,
		DOI:       req.DOI,
		ActorID:   userID.(int),
	})

	renderPipeline(c, response)
}

// GetArticleRegistrations lists DOI registration attempts for an article.
func GetArticleRegistrations(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || articleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	service := services.NewDOIService(nil, nil)
	registrations, err := service.ListRegistrations(c.Request.Context(), articleID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"registrations": registrations,
		"total":         len(registrations),
	})
}
