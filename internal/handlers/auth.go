package handlers

import (
	"net/http"
	"strings"

	"agrihub/internal/services"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

// RequireAuth rejects requests without a valid bearer token for a live session.
func RequireAuth(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Authorization header is missing",
				"redirect": redirectLogin,
			})
			return
		}

		session, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// OptionalAuth attaches the session when a valid token is sent and lets anonymous requests through.
func OptionalAuth(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if session, err := sessions.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(sessionContextKey, session)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func sessionFrom(c *gin.Context) (*services.Session, bool) {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*services.Session)
	return session, ok
}

// mustSession is for handlers mounted behind RequireAuth.
func mustSession(c *gin.Context) *services.Session {
	session, _ := sessionFrom(c)
	return session
}
