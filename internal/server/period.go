package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	feedomain "github.com/smallbiznis/commission/internal/fee/domain"
)

func (s *Server) GetCurrentPeriod(c *gin.Context) {
	resp, err := s.periodSvc.GetOrCreateCurrent(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RolloverPeriod closes the current period and opens the next one.
func (s *Server) RolloverPeriod(c *gin.Context) {
	resp, err := s.periodSvc.CloseAndCreateNext(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPeriodFees(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	agentID, err := parseOptionalInt64(c.Query("agent_id"))
	if err != nil {
		AbortWithError(c, newValidationError("agent_id", "invalid_agent_id", "invalid agent_id"))
		return
	}
	producerID, err := parseOptionalInt64(c.Query("producer_id"))
	if err != nil {
		AbortWithError(c, newValidationError("producer_id", "invalid_producer_id", "invalid producer_id"))
		return
	}
	classID, err := parseOptionalInt64(c.Query("bkge_class_id"))
	if err != nil {
		AbortWithError(c, newValidationError("bkge_class_id", "invalid_bkge_class_id", "invalid bkge_class_id"))
		return
	}

	if _, err := s.periodSvc.Get(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.feeSvc.ListByPeriod(c.Request.Context(), id, feedomain.PeriodFilter{
		AgentID:     agentID,
		ProducerID:  producerID,
		BkgeClassID: classID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
