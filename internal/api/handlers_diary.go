package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/light11014/Moodmate-Backend/internal/api/respond"
	"github.com/light11014/Moodmate-Backend/internal/api/validate"
	"github.com/light11014/Moodmate-Backend/internal/model"
	"github.com/light11014/Moodmate-Backend/internal/services"
)

type DiaryHandler struct {
	svc *services.DiaryService
}

func NewDiaryHandler(svc *services.DiaryService) *DiaryHandler { return &DiaryHandler{svc: svc} }

// CreateDiary POST /api/diaries
func (h *DiaryHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	var in struct {
		Content string `json:"content"`
		Date    string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.CreateDiary(in.Content, in.Date, services.MaxDiaryContentRunes); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	d, err := h.svc.CreateDiary(r.Context(), userID, in.Content, date)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, d)
}

// GetDiary GET /api/diaries/{diaryId}
func (h *DiaryHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	d, err := h.svc.GetDiary(r.Context(), userID, mux.Vars(r)["diaryId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, d)
}

// DeleteDiary DELETE /api/diaries/{diaryId}
func (h *DiaryHandler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requester(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteDiary(r.Context(), userID, mux.Vars(r)["diaryId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
