package router

import (
	"errors"
	"net/http"

	"github.com/KRaymonne/pro/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Define keys for storing the token in the session and context.
const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenContextKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection is a custom middleware to protect against CSRF attacks.
// The token rides in the session cookie; the React client reads it from the
// /api/auth/csrf endpoint and echoes it back in the X-CSRF-Token header on
// every unsafe request.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		// Get or create the real CSRF token for the session.
		var token string
		sessionToken := session.Get(csrfTokenSessionKey)

		if sessionToken == nil {
			newToken, err := utils.GenerateSecureToken(32)
			if err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to generate CSRF token"))
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				c.AbortWithError(http.StatusInternalServerError, errors.New("failed to save session"))
				return
			}
		} else {
			token = sessionToken.(string)
		}

		c.Set(csrfTokenContextKey, token)

		// Validate the token on unsafe methods.
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
			submittedToken := c.GetHeader(csrfTokenHeaderKey)
			if submittedToken == "" {
				submittedToken = c.PostForm("_csrf")
			}
			if submittedToken == "" || submittedToken != token {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "jeton CSRF invalide"})
				return
			}
		}

		c.Next()
	}
}
