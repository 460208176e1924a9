package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	journaldomain "github.com/smallbiznis/commission/internal/journal/domain"
	ledgerdomain "github.com/smallbiznis/commission/internal/ledger/domain"
	"github.com/smallbiznis/commission/internal/orgcontext"
)

// IngestJournal accepts a multipart statement upload and records it as a
// new OPEN journal.
func (s *Server) IngestJournal(c *gin.Context) {
	producerCode := strings.TrimSpace(c.PostForm("producer"))
	if producerCode == "" {
		AbortWithError(c, newValidationError("producer", "required", "producer is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(content) > maxUploadBytes {
		AbortWithError(c, newValidationError("file", "too_large", "file is too large"))
		return
	}

	cashAmount, err := parseOptionalDecimal(c.PostForm("cash_amount"))
	if err != nil {
		AbortWithError(c, newValidationError("cash_amount", "invalid_cash_amount", "invalid cash_amount"))
		return
	}

	c.Set("producer_code", producerCode)

	resp, err := s.journalSvc.Ingest(c.Request.Context(), journaldomain.IngestRequest{
		ProducerCode: producerCode,
		Filename:     fileHeader.Filename,
		Source:       bytes.NewReader(content),
		Description:  strings.TrimSpace(c.PostForm("description")),
		Reference:    strings.TrimSpace(c.PostForm("reference")),
		CashAmount:   cashAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetJournal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.journalSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListJournalLineItems(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.journalSvc.ListLineItems(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListJournalFees(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.feeSvc.ListByJournal(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListJournalLedger returns the ledger lines posted when the journal was
// committed. An uncommitted journal has none.
func (s *Server) ListJournalLedger(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.ledgerSvc.ListLines(c.Request.Context(), orgID.Int64(), ledgerdomain.SourceTypeJournalCommit, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CommitJournal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var actorID int64
	if actor, ok := orgcontext.ActorIDFromContext(c.Request.Context()); ok {
		actorID = actor.Int64()
	}

	resp, err := s.commitSvc.Commit(c.Request.Context(), id, actorID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
