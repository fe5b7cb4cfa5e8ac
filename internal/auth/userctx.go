package auth

import (
	"net/http"
	"strings"

	"github.com/atelierhq/atelier-backend/internal/users"
	"github.com/gin-gonic/gin"
)

const (
	CtxExternalID = "external_id"
	CtxUserDBID   = "user_db_id"
	CtxUserRole   = "user_role"
)

// WithUser resolves the caller identity the auth gateway forwards in headers
// and upserts the account row. The questionnaire core never reads ambient
// identity; handlers pass the resolved db id down as an explicit parameter.
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		extID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if extID == "" {
			extID = "demo-user"
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			ExternalID:  extID,
			Email:       c.GetHeader("X-User-Email"),
			DisplayName: c.GetHeader("X-User-Name"),
			Role:        normalizeRole(c.GetHeader("X-User-Role")),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxExternalID, extID)
		c.Set(CtxUserDBID, uid)
		c.Set(CtxUserRole, normalizeRole(c.GetHeader("X-User-Role")))
		c.Next()
	}
}

// UserDBID returns the caller's database id resolved by WithUser.
func UserDBID(c *gin.Context) string {
	v := c.GetString(CtxUserDBID)
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// UserRole returns the caller's role, "designer" or "client".
func UserRole(c *gin.Context) string {
	return c.GetString(CtxUserRole)
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), "client") {
		return "client"
	}
	return "designer"
}
