package middleware

import (
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	// To avoid potential import cycles with internal/api, ErrorResponse is defined locally.
)

// SessionCookieName is the cookie carrying the signed Firebase session
// artifact issued by the session endpoints.
const SessionCookieName = "session"

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuthMiddleware provides Gin middleware for Firebase session authentication.
type AuthMiddleware struct {
	firebaseAuthClient *auth.Client
}

// NewAuthMiddleware creates a new AuthMiddleware instance. It panics if the
// firebaseAuthClient is nil, as this is a critical setup dependency.
func NewAuthMiddleware(fbAuthClient *auth.Client) *AuthMiddleware {
	if fbAuthClient == nil {
		log.Fatal("CRITICAL_ERROR: Firebase Auth client is not initialized for AuthMiddleware.")
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{firebaseAuthClient: fbAuthClient}
}

// Authenticate verifies the session cookie cryptographically on every
// request. Cookie presence alone is never treated as authentication. When no
// cookie is present, a Bearer ID token in the Authorization header is
// accepted instead; the profile-initialize call runs before any cookie
// exists.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			token, err := m.firebaseAuthClient.VerifySessionCookie(c.Request.Context(), cookie)
			if err != nil {
				log.Printf("AuthMiddleware: Error verifying session cookie: %v", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired session"})
				return
			}
			m.setUserContext(c, token)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required: session cookie or Authorization header"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			log.Printf("AuthMiddleware: Error verifying Firebase ID token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}
		m.setUserContext(c, token)
		c.Next()
	}
}

// setUserContext stores the authenticated user's identity and the standard
// profile claims for downstream handlers.
func (m *AuthMiddleware) setUserContext(c *gin.Context, token *auth.Token) {
	c.Set("userID", token.UID)

	if email, ok := token.Claims["email"].(string); ok {
		c.Set("userEmail", email)
	}
	// 'name' and 'picture' are the common Firebase claims for display
	// name and photo URL.
	if name, ok := token.Claims["name"].(string); ok {
		c.Set("userDisplayName", name)
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		c.Set("userPhotoURL", picture)
	}
}
