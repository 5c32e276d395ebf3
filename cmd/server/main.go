package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"crewboard-backend-go/internal/api"
	"crewboard-backend-go/internal/config"
	"crewboard-backend-go/internal/core"
	"crewboard-backend-go/internal/db"
	"crewboard-backend-go/internal/middleware"
	"crewboard-backend-go/internal/stripegw"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	// A local .env file is optional; deployed environments inject real env vars.
	if err := godotenv.Load(); err != nil {
		zapLogger.Info("No .env file found, relying on process environment.")
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirebase(initCtx, appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	// --- 4. Initialize Payment Gateway ---
	gateway, err := stripegw.New(appConfig.StripeSecretKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Stripe gateway", zap.Error(err))
	}
	zapLogger.Info("Stripe gateway initialized successfully.")

	// --- 5. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	txnRepo := db.NewFirestoreTransactionRepository(clients.Firestore)
	cardRepo := db.NewFirestoreCardRepository(clients.Firestore)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 6. Initialize Services ---
	userService := core.NewUserService(userRepo)
	billingService := core.NewBillingService(userRepo, txnRepo, gateway, appConfig)
	paymentService := core.NewPaymentMethodService(userRepo, cardRepo, gateway)
	sessionService := core.NewSessionService(clients.Auth)
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	// gin.New() keeps control over the middleware stack; the custom zap
	// request logger replaces gin's default.
	router := gin.New()

	// --- 8. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 9. Setup API Routes ---
	authMW := middleware.NewAuthMiddleware(clients.Auth)
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		authMW,
		userService,
		billingService,
		paymentService,
		sessionService,
	)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
