package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vedicotp/vedicotp/internal/middleware"
)

// NewRouter wires the public API. The audit route is registered only when
// operatorAuth is non-nil.
func NewRouter(
	otpHandlers *OTPHandlers,
	authMiddleware *middleware.AuthMiddleware,
	operatorAuth *middleware.OperatorAuth,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/generate-otp", otpHandlers.GenerateOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/verify-otp", otpHandlers.VerifyOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/stats", otpHandlers.Stats).Methods("GET", "OPTIONS")

	if operatorAuth != nil {
		api.Handle("/audit", operatorAuth.RequireOperator(http.HandlerFunc(otpHandlers.Audit))).Methods("GET", "OPTIONS")
	}

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	protected.HandleFunc("/session", otpHandlers.Session).Methods("GET", "OPTIONS")

	return router
}
