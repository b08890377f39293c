package services

import (
	"context"
	"errors"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

// PipelineResponse is the structured result every pipeline operation hands
// back to the admin layer. Success with a non-nil Error means partial
// success: the primary write committed but a later stage (DOI registration)
// failed and can be retried on its own.
type PipelineResponse struct {
	Success  bool           `json:"success"`
	Data     interface{}    `json:"data,omitempty"`
	Error    *PipelineError `json:"error,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Pipeline sequences the editorial stages: decision, publication, DOI
// registration. Each stage stays independently invokable; the pipeline only
// adds ordering and partial-failure reporting.
type Pipeline struct {
	db          *gorm.DB
	decisions   *DecisionService
	publication *PublicationService
	doi         *DOIService
	capability  *CapabilityService
}

// NewPipeline wires the full pipeline against one database handle. A nil
// registration client keeps the real Crossref client.
func NewPipeline(db *gorm.DB, client RegistrationClient) *Pipeline {
	if db == nil {
		db = config.DB
	}
	return &Pipeline{
		db:          db,
		decisions:   NewDecisionService(db, NewNotificationService(db)),
		publication: NewPublicationService(db),
		doi:         NewDOIService(db, client),
		capability:  NewCapabilityService(db),
	}
}

// asPipelineError normalizes any stage error into the taxonomy.
func asPipelineError(err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return WrapPipelineError(KindInternal, "unexpected pipeline failure", err)
}

// Decide runs the decision engine.
func (p *Pipeline) Decide(ctx context.Context, input *DecisionInput) *PipelineResponse {
	result, err := p.decisions.Decide(ctx, input)
	if err != nil {
		return &PipelineResponse{Success: false, Error: asPipelineError(err)}
	}
	return &PipelineResponse{Success: true, Data: result}
}

// Publish runs the publication assembler and, when a DOI was supplied,
// immediately attempts registration. A registration failure does not undo
// the publication: the response stays successful and carries the
// registration error for a targeted retry.
func (p *Pipeline) Publish(ctx context.Context, input *PublishInput) *PipelineResponse {
	result, err := p.publication.Publish(ctx, input)
	if err != nil {
		return &PipelineResponse{Success: false, Error: asPipelineError(err)}
	}

	response := &PipelineResponse{Success: true, Data: result, Warnings: result.Warnings}

	if input.DOI != nil && *input.DOI != "" {
		registration, regErr := p.doi.Register(ctx, &RegisterDOIInput{
			ArticleID: result.Article.ArticleID,
			DOI:       *input.DOI,
			ActorID:   input.EditorID,
		})
		if registration != nil {
			result.Registration = registration
		}
		if regErr != nil {
			response.Error = asPipelineError(regErr)
			response.Warnings = append(response.Warnings,
				"article published but DOI registration failed; retry the registration separately")
		}
	}

	return response
}

// RetryDOI re-runs registration for an existing article. It is safe to call
// any number of times; each attempt updates the same registration row.
func (p *Pipeline) RetryDOI(ctx context.Context, input *RegisterDOIInput) *PipelineResponse {
	if input == nil || input.ArticleID <= 0 {
		return &PipelineResponse{Success: false, Error: NewPipelineError(KindValidation, "article id is required")}
	}

	var article models.Article
	if err := p.db.WithContext(ctx).
		Select("article_id, journal_id").
		Where("article_id = ?", input.ArticleID).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PipelineResponse{Success: false, Error: NewPipelineError(KindNotFound, "article not found")}
		}
		return &PipelineResponse{Success: false, Error: WrapPipelineError(KindInternal, "failed to load article", err)}
	}

	if err := p.capability.requireEditor(ctx, input.ActorID, article.JournalID); err != nil {
		return &PipelineResponse{Success: false, Error: asPipelineError(err)}
	}

	registration, err := p.doi.Register(ctx, input)
	if err != nil {
		response := &PipelineResponse{Success: false, Error: asPipelineError(err)}
		if registration != nil {
			response.Data = registration
		}
		return response
	}
	return &PipelineResponse{Success: true, Data: registration}
}
