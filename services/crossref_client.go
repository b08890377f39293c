package services

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"journal-management-api/models"

	"github.com/google/uuid"
)

const (
	crossrefDepositURL   = "https://doi.crossref.org/servlet/deposit"
	crossrefDepositOp    = "doMDUpload"
	crossrefSchemaVer    = "4.4.2"
	crossrefCallTimeout  = 30 * time.Second
	crossrefMaxErrorBody = 4096
)

// CrossrefDeposit is the metadata batch submitted to the registration
// agency. Only the fields this system populates are modeled; the response
// side stays opaque.
type CrossrefDeposit struct {
	XMLName xml.Name    `xml:"doi_batch"`
	Version string      `xml:"version,attr"`
	Head    depositHead `xml:"head"`
	Body    depositBody `xml:"body"`
}

type depositHead struct {
	BatchID    string           `xml:"doi_batch_id"`
	Timestamp  int64            `xml:"timestamp"`
	Depositor  depositDepositor `xml:"depositor"`
	Registrant string           `xml:"registrant"`
}

type depositDepositor struct {
	Name  string `xml:"depositor_name"`
	Email string `xml:"email_address"`
}

type depositBody struct {
	Journal depositJournal `xml:"journal"`
}

type depositJournal struct {
	Metadata depositJournalMeta `xml:"journal_metadata"`
	Issue    *depositIssue      `xml:"journal_issue,omitempty"`
	Article  depositArticle     `xml:"journal_article"`
}

type depositJournalMeta struct {
	FullTitle string  `xml:"full_title"`
	ISSN      *string `xml:"issn,omitempty"`
}

type depositIssue struct {
	Volume string `xml:"journal_volume>volume,omitempty"`
	Issue  string `xml:"issue,omitempty"`
}

type depositArticle struct {
	Title        string             `xml:"titles>title"`
	Contributors []depositPerson    `xml:"contributors>person_name"`
	PubDate      depositDate        `xml:"publication_date"`
	Pages        *string            `xml:"pages>first_page,omitempty"`
	DOIData      depositDOIData     `xml:"doi_data"`
}

type depositPerson struct {
	Sequence string  `xml:"sequence,attr"`
	Role     string  `xml:"contributor_role,attr"`
	Given    string  `xml:"given_name"`
	Surname  string  `xml:"surname"`
	ORCID    *string `xml:"ORCID,omitempty"`
}

type depositDate struct {
	Year int `xml:"year"`
}

type depositDOIData struct {
	DOI      string `xml:"doi"`
	Resource string `xml:"resource"`
}

// DepositResult is the normalized outcome of one registration attempt.
// Raw carries the unparsed agency response for the registration row.
type DepositResult struct {
	Status    string `json:"status"` // "success" | "error"
	DepositID string `json:"deposit_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

// Succeeded reports whether the agency accepted the deposit.
func (r *DepositResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// RegistrationClient submits deposits to the external agency. The registrar
// depends on this interface so tests can script outcomes.
type RegistrationClient interface {
	Register(ctx context.Context, deposit *CrossrefDeposit) (*DepositResult, error)
}

// CrossrefClient submits deposit batches over HTTPS. Credentials come from
// CROSSREF_LOGIN / CROSSREF_PASSWORD; CROSSREF_DEPOSIT_URL overrides the
// endpoint for test deployments.
type CrossrefClient struct {
	baseURL  string
	login    string
	password string
	client   *http.Client
}

// NewCrossrefClient constructs a CrossrefClient. A nil http client gets a
// timeout-bound default; the registrar additionally bounds each call with a
// context deadline.
func NewCrossrefClient(client *http.Client) *CrossrefClient {
	if client == nil {
		client = &http.Client{Timeout: crossrefCallTimeout}
	}
	baseURL := os.Getenv("CROSSREF_DEPOSIT_URL")
	if baseURL == "" {
		baseURL = crossrefDepositURL
	}
	return &CrossrefClient{
		baseURL:  baseURL,
		login:    os.Getenv("CROSSREF_LOGIN"),
		password: os.Getenv("CROSSREF_PASSWORD"),
		client:   client,
	}
}

// BuildDeposit assembles the deposit batch for one article. Authors must be
// in sequence order; the first contributor is marked as such per the schema.
func BuildDeposit(journal *models.Journal, article *models.Article, authors []models.ArticleAuthor, doi string) *CrossrefDeposit {
	deposit := &CrossrefDeposit{
		Version: crossrefSchemaVer,
		Head: depositHead{
			BatchID:   uuid.NewString(),
			Timestamp: time.Now().Unix(),
			Depositor: depositDepositor{
				Name:  os.Getenv("CROSSREF_DEPOSITOR_NAME"),
				Email: os.Getenv("CROSSREF_DEPOSITOR_EMAIL"),
			},
			Registrant: journal.Title,
		},
	}
	if deposit.Head.Depositor.Name == "" {
		deposit.Head.Depositor.Name = journal.Title
	}

	deposit.Body.Journal.Metadata = depositJournalMeta{
		FullTitle: journal.Title,
		ISSN:      journal.ISSN,
	}

	if article.Volume != nil || article.IssueNumber != nil {
		issue := &depositIssue{}
		if article.Volume != nil {
			issue.Volume = strconv.Itoa(*article.Volume)
		}
		if article.IssueNumber != nil {
			issue.Issue = *article.IssueNumber
		}
		deposit.Body.Journal.Issue = issue
	}

	year := article.PublishedDate.Year()
	if article.Year != nil {
		year = *article.Year
	}

	deposit.Body.Journal.Article = depositArticle{
		Title:   article.Title,
		PubDate: depositDate{Year: year},
		Pages:   article.Pages,
		DOIData: depositDOIData{
			DOI:      doi,
			Resource: articleResourceURL(journal, article),
		},
	}

	for i, author := range authors {
		sequence := "additional"
		if i == 0 {
			sequence = "first"
		}
		deposit.Body.Journal.Article.Contributors = append(deposit.Body.Journal.Article.Contributors, depositPerson{
			Sequence: sequence,
			Role:     "author",
			Given:    author.FirstName,
			Surname:  author.LastName,
			ORCID:    author.ORCID,
		})
	}

	return deposit
}

// articleResourceURL builds the public landing page registered with the DOI.
func articleResourceURL(journal *models.Journal, article *models.Article) string {
	base := "https://example.org"
	if journal.BaseURL != nil && *journal.BaseURL != "" {
		base = *journal.BaseURL
	}
	return fmt.Sprintf("%s/articles/%d", base, article.ArticleID)
}

// crossrefAck mirrors just enough of the agency acknowledgement to tell
// success from failure; everything else is kept raw.
type crossrefAck struct {
	XMLName      xml.Name `xml:"doi_batch_diagnostic"`
	Status       string   `xml:"status,attr"`
	SubmissionID string   `xml:"submission_id"`
	Message      string   `xml:"record_diagnostic>msg"`
}

// Register submits the deposit and normalizes the acknowledgement. Network
// and timeout failures are returned as errors; agency-side rejections come
// back as a DepositResult with status "error".
func (c *CrossrefClient) Register(ctx context.Context, deposit *CrossrefDeposit) (*DepositResult, error) {
	payload, err := xml.MarshalIndent(deposit, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode deposit: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("fname", deposit.Head.BatchID+".xml")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(xml.Header)); err != nil {
		return nil, err
	}
	if _, err := part.Write(payload); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	query := reqURL.Query()
	query.Set("operation", crossrefDepositOp)
	query.Set("login_id", c.login)
	query.Set("login_passwd", c.password)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crossref deposit request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read crossref response: %w", err)
	}

	result := &DepositResult{Raw: string(raw)}

	if resp.StatusCode != http.StatusOK {
		result.Status = "error"
		result.Message = fmt.Sprintf("crossref returned status %d: %s",
			resp.StatusCode, truncate(string(raw), crossrefMaxErrorBody))
		return result, nil
	}

	var ack crossrefAck
	if err := xml.Unmarshal(raw, &ack); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("unparseable crossref response: %v", err)
		return result, nil
	}

	result.DepositID = ack.SubmissionID
	if ack.Status == "completed" {
		result.Status = "success"
		result.Message = ack.Message
	} else {
		result.Status = "error"
		result.Message = ack.Message
		if result.Message == "" {
			result.Message = fmt.Sprintf("crossref batch status %q", ack.Status)
		}
	}

	return result, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
