package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/light11014/Moodmate-Backend/internal/api/recovery"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/services"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Feedback *services.FeedbackService
	Analysis *services.AnalysisService
	Diaries  *services.DiaryService
	Users    *services.UserService
	Tokens   *auth.TokenIssuer
	Health   ServiceHealth
	// DevTokens enables POST /api/auth/dev-token.
	DevTokens bool
}

// NewRouter wires HTTP routes to handlers. Everything under /api except health
// and the development token endpoint requires a bearer token.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	feedback := NewFeedbackHandler(d.Feedback)
	analysis := NewAnalysisHandler(d.Analysis)
	diary := NewDiaryHandler(d.Diaries)
	user := NewUserHandler(d.Users, d.Tokens)
	healthHandler := NewHealthHandler(d.Health)

	// Public
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if d.DevTokens {
		root.HandleFunc("/api/auth/dev-token", user.IssueDevToken).Methods("POST")
	}

	secured := root.PathPrefix("/api").Subrouter()
	secured.Use(d.Tokens.Middleware)

	// Feedback
	secured.HandleFunc("/diaries/{diaryId}/feedback", feedback.CreateFeedback).Methods("POST")
	secured.HandleFunc("/diaries/{diaryId}/feedback", feedback.GetFeedback).Methods("GET")
	secured.HandleFunc("/diaries/{diaryId}/feedback", feedback.DeleteFeedback).Methods("DELETE")
	secured.HandleFunc("/feedback/history", feedback.GetHistory).Methods("GET")
	secured.HandleFunc("/feedback/usage", feedback.GetUsage).Methods("GET")
	secured.HandleFunc("/feedback/period-analysis", analysis.GeneratePeriodAnalysis).Methods("POST")

	// Diaries
	secured.HandleFunc("/diaries", diary.CreateDiary).Methods("POST")
	secured.HandleFunc("/diaries/{diaryId}", diary.GetDiary).Methods("GET")
	secured.HandleFunc("/diaries/{diaryId}", diary.DeleteDiary).Methods("DELETE")

	// Users
	secured.HandleFunc("/users/me", user.GetMe).Methods("GET")

	return root
}
