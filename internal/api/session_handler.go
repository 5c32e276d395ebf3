package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewboard-backend-go/internal/core"
	"crewboard-backend-go/internal/middleware"
	"crewboard-backend-go/internal/models"
)

// SessionHandler issues and clears the session cookie used for request
// authentication.
type SessionHandler struct {
	sessionService core.SessionService
	secureCookies  bool // secure flag on in release mode
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss core.SessionService, secureCookies bool) *SessionHandler {
	return &SessionHandler{sessionService: ss, secureCookies: secureCookies}
}

// SignIn handles POST /session/signin. It exchanges the client-side Firebase
// ID token for a signed session cookie.
func (h *SessionHandler) SignIn(c *gin.Context) {
	h.issueCookie(c, "Signed in successfully")
}

// SignUp handles POST /session/signup. Identical exchange to SignIn; the
// Firebase account was already created client-side.
func (h *SessionHandler) SignUp(c *gin.Context) {
	h.issueCookie(c, "Account created successfully")
}

// SignOut handles POST /session/signout by expiring the session cookie.
func (h *SessionHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Signed out"})
}

func (h *SessionHandler) issueCookie(c *gin.Context, message string) {
	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	cookie, maxAge, err := h.sessionService.IssueSessionCookie(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "idToken is required"})
			return
		}
		log.Printf("Session cookie exchange failed: %v", err)
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Failed to create session"})
		return
	}

	// HTTP-only, SameSite=Lax; the Secure flag follows the Gin mode so
	// local development over plain HTTP still works.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, cookie, int(maxAge.Seconds()), "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: message})
}
