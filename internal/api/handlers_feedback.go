package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/light11014/Moodmate-Backend/internal/api/respond"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/services"
)

// requester returns the authenticated user id or writes 401.
func requester(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, auth.ErrMissingToken.Error())
		return "", false
	}
	return userID, true
}

// decodeOptional decodes a JSON body into v. An empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type FeedbackHandler struct {
	svc *services.FeedbackService
}

func NewFeedbackHandler(svc *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// CreateFeedback POST /api/diaries/{diaryId}/feedback
func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	var in struct {
		FeedbackStyle string `json:"feedbackStyle"`
	}
	if err := decodeOptional(r, &in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	fb, err := h.svc.CreateFeedback(r.Context(), userID, mux.Vars(r)["diaryId"], model.FeedbackStyle(in.FeedbackStyle))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, fb)
}

// GetFeedback GET /api/diaries/{diaryId}/feedback
func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	fb, err := h.svc.GetFeedback(r.Context(), userID, mux.Vars(r)["diaryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, fb)
}

// DeleteFeedback DELETE /api/diaries/{diaryId}/feedback
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteFeedback(r.Context(), userID, mux.Vars(r)["diaryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory GET /api/feedback/history?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *FeedbackHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	start, err := model.ParseDate(q.Get("startDate"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	end, err := model.ParseDate(q.Get("endDate"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	hist, err := h.svc.GetFeedbackHistory(r.Context(), userID, start, end)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, hist)
}

// GetUsage GET /api/feedback/usage
func (h *FeedbackHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	u, err := h.svc.GetDailyUsage(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

type AnalysisHandler struct {
	svc *services.AnalysisService
}

func NewAnalysisHandler(svc *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

// GeneratePeriodAnalysis POST /api/feedback/period-analysis
func (h *AnalysisHandler) GeneratePeriodAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	var in struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	start, err := model.ParseDate(in.StartDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	end, err := model.ParseDate(in.EndDate)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	report, err := h.svc.GeneratePeriodAnalysis(r.Context(), userID, start, end)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, report)
}
