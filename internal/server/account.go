package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type assignDealRequest struct {
	DealID int64 `json:"deal_id"`
}

func (s *Server) ListUnallocatedAccounts(c *gin.Context) {
	producerID, err := parseOptionalInt64(c.Query("producer_id"))
	if err != nil {
		AbortWithError(c, newValidationError("producer_id", "invalid_producer_id", "invalid producer_id"))
		return
	}

	resp, err := s.accountSvc.ListUnallocated(c.Request.Context(), producerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// AssignAccountDeal attaches a deal to a client account so its line items
// can be split on commit.
func (s *Server) AssignAccountDeal(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req assignDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.DealID <= 0 {
		AbortWithError(c, newValidationError("deal_id", "invalid_deal_id", "invalid deal_id"))
		return
	}

	resp, err := s.accountSvc.AssignDeal(c.Request.Context(), id, req.DealID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
