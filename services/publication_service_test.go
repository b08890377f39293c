package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"journal-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	articleCountPattern    = regexp.MustCompile(`SELECT count\(\*\) FROM .articles. WHERE submission_id = \?`)
	articleInsertPattern   = regexp.MustCompile(`INSERT INTO .articles.`)
	historyInsertPattern   = regexp.MustCompile(`INSERT INTO .publication_history.`)
	pendingDOIPattern      = regexp.MustCompile(`INSERT INTO .doi_registrations.`)
	subAuthorsQueryPattern = regexp.MustCompile(`SELECT \* FROM .submission_authors.`)
	subFilesQueryPattern   = regexp.MustCompile(`SELECT \* FROM .submission_files.`)
	articleAuthorPattern   = regexp.MustCompile(`INSERT INTO .article_authors.`)
	articleFilePattern     = regexp.MustCompile(`INSERT INTO .article_files.`)
	storageLinkQueryPattern = regexp.MustCompile(`SELECT \* FROM .file_storage_links. WHERE submission_file_id = \?`)
	storageLinkUpdatePattern = regexp.MustCompile(`UPDATE .file_storage_links. SET`)
)

func TestPublishCreatesArticleAndCopiesChildren(t *testing.T) {
	doi := "10.1234/x"

	steps := []*queryStep{
		submissionRow(42, 1, 9, 1, "accepted"),
		superAdminStep(),
		{
			kind:    kindQuery,
			pattern: articleCountPattern,
			args:    []driver.Value{int64(42)},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{kind: kindBegin},
		{
			kind:    kindExec,
			pattern: articleInsertPattern,
			anyArgs: true,
			result:  scriptedResult{lastInsertID: 10, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: submissionUpdatePattern,
			args:    []driver.Value{anyValue{}, "published", int64(42)},
		},
		{kind: kindExec, pattern: historyInsertPattern, anyArgs: true, result: scriptedResult{lastInsertID: 1, rowsAffected: 1}},
		{kind: kindExec, pattern: pendingDOIPattern, anyArgs: true, result: scriptedResult{lastInsertID: 1, rowsAffected: 1}},
		{kind: kindCommit},
		{
			kind:    kindQuery,
			pattern: subAuthorsQueryPattern,
			anyArgs: true,
			columns: []string{"author_id", "submission_id", "first_name", "last_name", "sequence"},
			rows: [][]driver.Value{
				{int64(1), int64(42), "Ada", "Lovelace", int64(1)},
				{int64(2), int64(42), "Charles", "Babbage", int64(2)},
			},
		},
		{
			kind:    kindExec,
			pattern: articleAuthorPattern,
			args:    []driver.Value{int64(10), "Ada", "Lovelace", nil, nil, nil, int64(1)},
			result:  scriptedResult{lastInsertID: 11, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: articleAuthorPattern,
			args:    []driver.Value{int64(10), "Charles", "Babbage", nil, nil, nil, int64(2)},
			result:  scriptedResult{lastInsertID: 12, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: subFilesQueryPattern,
			anyArgs: true,
			columns: []string{"file_id", "submission_id", "original_name", "mime_type", "file_size", "file_stage"},
			rows: [][]driver.Value{
				{int64(5), int64(42), "manuscript.pdf", "application/pdf", int64(2048), "final"},
			},
		},
		{
			kind:    kindExec,
			pattern: articleFilePattern,
			anyArgs: true,
			result:  scriptedResult{lastInsertID: 20, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: storageLinkQueryPattern,
			anyArgs: true,
			columns: []string{"link_id", "submission_file_id", "storage_id"},
			rows:    [][]driver.Value{{int64(3), int64(5), "drive-abc"}},
		},
		{
			kind:    kindExec,
			pattern: storageLinkUpdatePattern,
			args:    []driver.Value{int64(20), anyValue{}, int64(3)},
		},
		{kind: kindExec, pattern: auditInsertPattern, anyArgs: true},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewPublicationService(db)
	result, err := service.Publish(context.Background(), &PublishInput{
		SubmissionID: 42,
		EditorID:     7,
		DOI:          &doi,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, result.Article.ArticleID)
	assert.Equal(t, 42, result.Article.SubmissionID)
	require.NotNil(t, result.Article.DOI)
	assert.Equal(t, doi, *result.Article.DOI)
	require.NotNil(t, result.Registration)
	assert.Equal(t, models.DOIStatusPending, result.Registration.Status)
	assert.Empty(t, result.Warnings)

	require.NoError(t, state.verifyComplete())
}

func TestPublishRejectsNonAcceptedSubmission(t *testing.T) {
	steps := []*queryStep{
		submissionRow(42, 1, 9, 1, "under_review"),
		superAdminStep(),
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewPublicationService(db)
	_, err := service.Publish(context.Background(), &PublishInput{SubmissionID: 42, EditorID: 7})

	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
	require.NoError(t, state.verifyComplete())
}

func TestPublishTwiceIsConflict(t *testing.T) {
	steps := []*queryStep{
		submissionRow(42, 1, 9, 1, "accepted"),
		superAdminStep(),
		{
			kind:    kindQuery,
			pattern: articleCountPattern,
			args:    []driver.Value{int64(42)},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewPublicationService(db)
	_, err := service.Publish(context.Background(), &PublishInput{SubmissionID: 42, EditorID: 7})

	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	require.NoError(t, state.verifyComplete())
}

func TestPublishSurvivesAuthorCopyFailureWithWarning(t *testing.T) {
	steps := []*queryStep{
		submissionRow(42, 1, 9, 1, "accepted"),
		superAdminStep(),
		{
			kind:    kindQuery,
			pattern: articleCountPattern,
			args:    []driver.Value{int64(42)},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{kind: kindBegin},
		{
			kind:    kindExec,
			pattern: articleInsertPattern,
			anyArgs: true,
			result:  scriptedResult{lastInsertID: 10, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: submissionUpdatePattern,
			args:    []driver.Value{anyValue{}, "published", int64(42)},
		},
		{kind: kindExec, pattern: historyInsertPattern, anyArgs: true, result: scriptedResult{lastInsertID: 1, rowsAffected: 1}},
		{kind: kindCommit},
		{
			kind:    kindQuery,
			pattern: subAuthorsQueryPattern,
			anyArgs: true,
			columns: []string{"author_id", "submission_id", "first_name", "last_name", "sequence"},
			rows: [][]driver.Value{
				{int64(1), int64(42), "Ada", "Lovelace", int64(1)},
			},
		},
		{
			kind:    kindExec,
			pattern: articleAuthorPattern,
			anyArgs: true,
			err:     errors.New("duplicate entry"),
		},
		{
			kind:    kindQuery,
			pattern: subFilesQueryPattern,
			anyArgs: true,
			columns: []string{"file_id"},
			rows:    [][]driver.Value{},
		},
		{kind: kindExec, pattern: auditInsertPattern, anyArgs: true},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewPublicationService(db)
	result, err := service.Publish(context.Background(), &PublishInput{SubmissionID: 42, EditorID: 7})
	require.NoError(t, err)

	assert.Equal(t, 10, result.Article.ArticleID)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "failed to copy author 1")

	require.NoError(t, state.verifyComplete())
}
