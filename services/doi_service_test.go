package services

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"journal-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	articleQueryPattern      = regexp.MustCompile(`SELECT \* FROM .articles. WHERE article_id = \?`)
	journalQueryPattern      = regexp.MustCompile(`SELECT \* FROM .journals. WHERE journal_id = \?`)
	articleAuthorsPattern    = regexp.MustCompile(`SELECT \* FROM .article_authors.`)
	doiUpsertPattern         = regexp.MustCompile(`(?s)INSERT INTO doi_registrations.*ON DUPLICATE KEY UPDATE`)
	registrationQueryPattern = regexp.MustCompile(`SELECT \* FROM .doi_registrations. WHERE article_id = \? AND doi = \?`)
	articleDOIUpdatePattern  = regexp.MustCompile(`UPDATE .articles. SET .doi.=\?`)
)

// stubRegistrationClient scripts one deposit outcome.
type stubRegistrationClient struct {
	result  *DepositResult
	err     error
	deposit *CrossrefDeposit
}

func (c *stubRegistrationClient) Register(ctx context.Context, deposit *CrossrefDeposit) (*DepositResult, error) {
	c.deposit = deposit
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func doiLookupSteps() []*queryStep {
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: articleQueryPattern,
			anyArgs: true,
			columns: []string{"article_id", "submission_id", "journal_id", "title"},
			rows:    [][]driver.Value{{int64(10), int64(42), int64(1), "Neural Architectures for Peer Review"}},
		},
		{
			kind:    kindQuery,
			pattern: journalQueryPattern,
			anyArgs: true,
			columns: []string{"journal_id", "title"},
			rows:    [][]driver.Value{{int64(1), "Journal of Software Research"}},
		},
		{
			kind:    kindQuery,
			pattern: articleAuthorsPattern,
			anyArgs: true,
			columns: []string{"article_author_id", "article_id", "first_name", "last_name", "sequence"},
			rows: [][]driver.Value{
				{int64(11), int64(10), "Ada", "Lovelace", int64(1)},
			},
		},
	}
}

func TestRegisterSuccessUpsertsAndPersistsDOI(t *testing.T) {
	client := &stubRegistrationClient{
		result: &DepositResult{Status: "success", DepositID: "dep-77", Raw: "<doi_batch_diagnostic status=\"completed\"/>"},
	}

	steps := append(doiLookupSteps(),
		&queryStep{
			kind:    kindExec,
			pattern: doiUpsertPattern,
			args: []driver.Value{
				int64(10), "10.1234/x", "registered", "dep-77",
				"<doi_batch_diagnostic status=\"completed\"/>", nil,
				anyValue{}, anyValue{}, anyValue{},
			},
		},
		&queryStep{
			kind:    kindQuery,
			pattern: registrationQueryPattern,
			anyArgs: true,
			columns: []string{"registration_id", "article_id", "doi", "status", "retry_count", "crossref_deposit_id"},
			rows:    [][]driver.Value{{int64(1), int64(10), "10.1234/x", "registered", int64(1), "dep-77"}},
		},
		&queryStep{
			kind:    kindExec,
			pattern: articleDOIUpdatePattern,
			args:    []driver.Value{"10.1234/x", int64(10)},
		},
		&queryStep{kind: kindExec, pattern: auditInsertPattern, anyArgs: true},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDOIService(db, client)
	registration, err := service.Register(context.Background(), &RegisterDOIInput{
		ArticleID: 10,
		DOI:       "10.1234/x",
		ActorID:   7,
	})
	require.NoError(t, err)

	assert.Equal(t, models.DOIStatusRegistered, registration.Status)
	assert.Equal(t, 1, registration.RetryCount)
	require.NotNil(t, registration.CrossrefDepositID)
	assert.Equal(t, "dep-77", *registration.CrossrefDepositID)

	// The deposit really carried the article metadata.
	require.NotNil(t, client.deposit)
	assert.Equal(t, "10.1234/x", client.deposit.Body.Journal.Article.DOIData.DOI)
	assert.Equal(t, "Journal of Software Research", client.deposit.Body.Journal.Metadata.FullTitle)

	require.NoError(t, state.verifyComplete())
}

func TestRegisterFailureRecordsAttemptAndReturnsExternalError(t *testing.T) {
	client := &stubRegistrationClient{
		result: &DepositResult{Status: "error", Message: "unauthorized depositor", Raw: "<error/>"},
	}

	steps := append(doiLookupSteps(),
		&queryStep{
			kind:    kindExec,
			pattern: doiUpsertPattern,
			args: []driver.Value{
				int64(10), "10.1234/x", "failed", nil,
				"<error/>", "unauthorized depositor",
				anyValue{}, nil, anyValue{},
			},
		},
		&queryStep{
			kind:    kindQuery,
			pattern: registrationQueryPattern,
			anyArgs: true,
			columns: []string{"registration_id", "article_id", "doi", "status", "retry_count", "error_message"},
			rows:    [][]driver.Value{{int64(1), int64(10), "10.1234/x", "failed", int64(1), "unauthorized depositor"}},
		},
		&queryStep{kind: kindExec, pattern: auditInsertPattern, anyArgs: true},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDOIService(db, client)
	registration, err := service.Register(context.Background(), &RegisterDOIInput{
		ArticleID: 10,
		DOI:       "10.1234/x",
		ActorID:   7,
	})

	require.Error(t, err)
	assert.Equal(t, KindExternalService, KindOf(err))
	require.NotNil(t, registration)
	assert.Equal(t, models.DOIStatusFailed, registration.Status)
	assert.Equal(t, 1, registration.RetryCount)

	require.NoError(t, state.verifyComplete())
}

func TestRegisterTimeoutIsRecordedAsFailedAttempt(t *testing.T) {
	client := &stubRegistrationClient{err: context.DeadlineExceeded}

	steps := append(doiLookupSteps(),
		&queryStep{
			kind:    kindExec,
			pattern: doiUpsertPattern,
			args: []driver.Value{
				int64(10), "10.1234/x", "failed", nil,
				nil, "context deadline exceeded",
				anyValue{}, nil, anyValue{},
			},
		},
		&queryStep{
			kind:    kindQuery,
			pattern: registrationQueryPattern,
			anyArgs: true,
			columns: []string{"registration_id", "article_id", "doi", "status", "retry_count"},
			rows:    [][]driver.Value{{int64(1), int64(10), "10.1234/x", "failed", int64(1)}},
		},
		&queryStep{kind: kindExec, pattern: auditInsertPattern, anyArgs: true},
	)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDOIService(db, client)
	registration, err := service.Register(context.Background(), &RegisterDOIInput{
		ArticleID: 10,
		DOI:       "10.1234/x",
		ActorID:   7,
	})

	require.Error(t, err)
	assert.Equal(t, KindExternalService, KindOf(err))
	assert.Equal(t, models.DOIStatusFailed, registration.Status)

	require.NoError(t, state.verifyComplete())
}

func TestRegisterRejectsMalformedDOI(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: articleQueryPattern,
			anyArgs: true,
			columns: []string{"article_id", "submission_id", "journal_id", "title"},
			rows:    [][]driver.Value{{int64(10), int64(42), int64(1), "Title"}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewDOIService(db, &stubRegistrationClient{})
	_, err := service.Register(context.Background(), &RegisterDOIInput{
		ArticleID: 10,
		DOI:       "not-a-doi",
		ActorID:   7,
	})

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	require.NoError(t, state.verifyComplete())
}
