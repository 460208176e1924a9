package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/commission/internal/orgcontext"
)

const (
	HeaderOrg   = "X-Org-Id"
	HeaderActor = "X-Actor-Id"
)

// OrgContext resolves the organization and acting user from request headers
// and stores them on the request context.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgcontext.ParseID(c.GetHeader(HeaderOrg))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)

		if raw := strings.TrimSpace(c.GetHeader(HeaderActor)); raw != "" {
			actorID, ok := orgcontext.ParseID(raw)
			if !ok {
				AbortWithError(c, newValidationError("actor_id", "invalid_actor_id", "invalid actor id"))
				return
			}
			ctx = orgcontext.WithActorID(ctx, actorID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
