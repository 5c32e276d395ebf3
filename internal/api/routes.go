package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crewboard-backend-go/internal/config"
	"crewboard-backend-go/internal/core"
	"crewboard-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) are applied to the
// router *before* this function is called, in main.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	userService core.UserService,
	billingService core.BillingService,
	paymentService core.PaymentMethodService,
	sessionService core.SessionService,
) {
	secureCookies := strings.ToLower(appConfig.GinMode) == "release"

	// --- Initialize Handlers ---
	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService)
	billingHandler := NewBillingHandler(billingService)
	paymentHandler := NewPaymentMethodHandler(paymentService)
	sessionHandler := NewSessionHandler(sessionService, secureCookies)

	// --- Define API Route Groups ---
	apiV1 := router.Group("/api/v1")
	{
		// --- Session Endpoints ---
		// Public: these are how a client obtains the session cookie in the
		// first place. The idToken in the body is the credential.
		sessionGroup := apiV1.Group("/session")
		{
			sessionGroup.POST("/signin", sessionHandler.SignIn)
			sessionGroup.POST("/signup", sessionHandler.SignUp)
			sessionGroup.POST("/signout", sessionHandler.SignOut)
		}

		// --- User and Authentication Endpoints ---
		userGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend profile exists. Accepts a Bearer ID token since the
			// session cookie may not exist yet.
			userGroup.POST("/initialize", authMW.Authenticate(), authHandler.InitializeUserProfile)
			userGroup.GET("/me", authMW.Authenticate(), userHandler.GetCurrentUserProfile)
		}

		// --- Billing Endpoints ---
		billingGroup := apiV1.Group("/billing")
		{
			// Public webhook endpoint for Stripe (no auth middleware here).
			// Stripe authenticates deliveries via signature, verified in
			// the service before any parsing.
			billingGroup.POST("/webhooks/stripe", billingHandler.HandleStripeWebhook)

			// Authenticated endpoints for user-initiated billing actions.
			authed := billingGroup.Group("", authMW.Authenticate())
			{
				authed.POST("/checkout", billingHandler.CreateCheckout)
				authed.POST("/subscription/cancel", billingHandler.CancelSubscription)

				authed.POST("/setup-intent", paymentHandler.CreateSetupIntent)
				authed.POST("/payment-methods", paymentHandler.SavePaymentMethod)
				authed.GET("/payment-methods", paymentHandler.ListPaymentMethods)
				authed.GET("/payment-methods/:paymentMethodId", paymentHandler.GetPaymentMethod)
				authed.DELETE("/payment-methods/:paymentMethodId", paymentHandler.DetachPaymentMethod)
				authed.PUT("/payment-methods/:paymentMethodId/primary", paymentHandler.SetPrimaryPaymentMethod)
			}
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Crewboard backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
