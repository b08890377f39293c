package services

import (
	"context"
	"errors"
	"log"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"
	"journal-management-api/utils"

	"gorm.io/gorm"
)

// doiUpsertSQL writes one registration attempt keyed by (article_id, doi).
// The single statement is what makes retries idempotent: a repeat attempt
// can never create a second row, and retry_count increases by exactly one
// per attempt. COALESCE keeps the previous deposit id and registration date
// when a later attempt fails.
const doiUpsertSQL = `INSERT INTO doi_registrations
(article_id, doi, status, crossref_deposit_id, crossref_response, error_message, last_attempt, retry_count, registration_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON DUPLICATE KEY UPDATE
status = VALUES(status),
crossref_deposit_id = COALESCE(VALUES(crossref_deposit_id), crossref_deposit_id),
crossref_response = VALUES(crossref_response),
error_message = VALUES(error_message),
last_attempt = VALUES(last_attempt),
retry_count = retry_count + 1,
registration_date = COALESCE(VALUES(registration_date), registration_date)`

// RegisterDOIInput identifies the article and, optionally, overrides the DOI
// stored on it.
type RegisterDOIInput struct {
	ArticleID int    `json:"article_id"`
	DOI       string `json:"doi,omitempty"`
	ActorID   int    `json:"actor_id"`
}

// DOIService registers article DOIs with the external agency and tracks
// every attempt in doi_registrations. The agency call is bounded by a
// timeout; a timeout is recorded as a failed attempt, never left pending.
type DOIService struct {
	db      *gorm.DB
	client  RegistrationClient
	audit   *AuditService
	timeout time.Duration
}

// NewDOIService constructs a DOIService. A nil client gets the real
// Crossref client.
func NewDOIService(db *gorm.DB, client RegistrationClient) *DOIService {
	if db == nil {
		db = config.DB
	}
	if client == nil {
		client = NewCrossrefClient(nil)
	}
	return &DOIService{
		db:      db,
		client:  client,
		audit:   NewAuditService(db),
		timeout: crossrefCallTimeout,
	}
}

// Register performs one registration attempt. The attempt is always
// recorded; on agency failure the registration row carries the error and an
// ExternalServiceError is returned so the caller can offer a manual retry.
func (s *DOIService) Register(ctx context.Context, input *RegisterDOIInput) (*models.DOIRegistration, error) {
	if input == nil || input.ArticleID <= 0 {
		return nil, NewPipelineError(KindValidation, "article id is required")
	}

	var article models.Article
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", input.ArticleID).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPipelineError(KindNotFound, "article not found").
				WithDetail("article_id", input.ArticleID)
		}
		return nil, WrapPipelineError(KindInternal, "failed to load article", err)
	}

	doi := input.DOI
	if doi == "" && article.DOI != nil {
		doi = *article.DOI
	}
	if !utils.ValidDOI(doi) {
		return nil, NewPipelineError(KindValidation, "a syntactically valid DOI is required").
			WithDetail("doi", doi)
	}

	var journal models.Journal
	if err := s.db.WithContext(ctx).
		Where("journal_id = ?", article.JournalID).
		First(&journal).Error; err != nil {
		return nil, WrapPipelineError(KindInternal, "failed to load journal metadata", err)
	}

	// Author list is deposit metadata only; an empty list still deposits.
	var authors []models.ArticleAuthor
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", article.ArticleID).
		Order("sequence ASC").
		Find(&authors).Error; err != nil {
		log.Printf("doi: failed to load authors for article %d: %v", article.ArticleID, err)
	}

	deposit := BuildDeposit(&journal, &article, authors, doi)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.Register(callCtx, deposit)
	if err != nil {
		// Timeouts and transport failures are recorded the same as an
		// agency rejection.
		result = &DepositResult{Status: "error", Message: err.Error()}
	}

	now := time.Now()
	registration, upsertErr := s.recordAttempt(ctx, article.ArticleID, doi, result, now)
	if upsertErr != nil {
		return nil, WrapPipelineError(KindInternal, "failed to record registration attempt", upsertErr)
	}

	if result.Succeeded() {
		if err := s.persistArticleDOI(ctx, &article, doi); err != nil {
			log.Printf("doi: failed to persist DOI on article %d: %v", article.ArticleID, err)
		}
	}

	entityID := article.ArticleID
	s.audit.Record(ctx, input.ActorID, "register_doi", "article", &entityID, map[string]interface{}{
		"doi":         doi,
		"status":      registration.Status,
		"retry_count": registration.RetryCount,
	})

	if !result.Succeeded() {
		return registration, NewPipelineError(KindExternalService, "doi registration failed").
			WithDetail("doi", doi).
			WithDetail("response", result.Raw).
			WithDetail("message", result.Message)
	}

	return registration, nil
}

// recordAttempt upserts the registration row and reads it back so callers
// see the stored retry_count.
func (s *DOIService) recordAttempt(ctx context.Context, articleID int, doi string, result *DepositResult, now time.Time) (*models.DOIRegistration, error) {
	var (
		status           string
		depositID        *string
		response         *string
		errorMessage     *string
		registrationDate *time.Time
	)

	if result.Raw != "" {
		raw := result.Raw
		response = &raw
	}

	if result.Succeeded() {
		status = models.DOIStatusRegistered
		registrationDate = &now
		if result.DepositID != "" {
			id := result.DepositID
			depositID = &id
		}
	} else {
		status = models.DOIStatusFailed
		message := result.Message
		if message == "" {
			message = "registration failed"
		}
		errorMessage = &message
	}

	if err := s.db.WithContext(ctx).Exec(doiUpsertSQL,
		articleID, doi, status, depositID, response, errorMessage, now, registrationDate, now,
	).Error; err != nil {
		return nil, err
	}

	var registration models.DOIRegistration
	if err := s.db.WithContext(ctx).
		Where("article_id = ? AND doi = ?", articleID, doi).
		First(&registration).Error; err != nil {
		return nil, err
	}

	return &registration, nil
}

// persistArticleDOI stores the DOI on the article if it has none yet. A
// second successful attempt with the same DOI is a no-op write.
func (s *DOIService) persistArticleDOI(ctx context.Context, article *models.Article, doi string) error {
	if article.DOI != nil && *article.DOI == doi {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.Article{}).
		Where("article_id = ? AND (doi IS NULL OR doi = '')", article.ArticleID).
		Update("doi", doi).Error
}

// ListRegistrations returns every registration row for an article, newest
// attempt first.
func (s *DOIService) ListRegistrations(ctx context.Context, articleID int) ([]models.DOIRegistration, error) {
	var registrations []models.DOIRegistration
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("last_attempt DESC").
		Find(&registrations).Error; err != nil {
		return nil, WrapPipelineError(KindInternal, "failed to list registrations", err)
	}
	return registrations, nil
}
