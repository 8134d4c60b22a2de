package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/auth"
	"github.com/light11014/Moodmate-Backend/internal/quota"
	"github.com/light11014/Moodmate-Backend/internal/services"
	"github.com/light11014/Moodmate-Backend/internal/store/memory"
)

type failingPeriod struct{ ai.Static }

func (failingPeriod) AnalyzeGrowthPattern(context.Context, string) (string, error) {
	return "", errors.New("upstream 500: secret stack detail")
}

type fakeHealth struct {
	up         bool
	components map[string]bool
}

func (f fakeHealth) IsHealthy() bool              { return f.up }
func (f fakeHealth) Components() map[string]bool { return f.components }

type testServer struct {
	srv    *httptest.Server
	tokens *auth.TokenIssuer
}

func newTestServer(t *testing.T, analyzer ai.Analyzer, dev bool) *testServer {
	t.Helper()
	st := memory.New()
	log := zerolog.Nop()
	tokens := auth.NewTokenIssuer("test-secret", "moodmate", time.Hour)
	router := NewRouter(Deps{
		Feedback:  services.NewFeedbackService(st, quota.NewStoreLedger(st, log), analyzer, log, services.FeedbackOptions{DailyLimit: 2}),
		Analysis:  services.NewAnalysisService(st, analyzer, log, services.AnalysisOptions{}),
		Diaries:   services.NewDiaryService(st, log),
		Users:     services.NewUserService(st, log),
		Tokens:    tokens,
		Health:    fakeHealth{up: true, components: map[string]bool{"store": true}},
		DevTokens: dev,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// login issues a dev token, creating the user.
func (ts *testServer) login(t *testing.T, userID string) string {
	t.Helper()
	resp, body := ts.do(t, "POST", "/api/auth/dev-token", "", map[string]string{"userId": userID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tok, _ := body["accessToken"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (ts *testServer) diary(t *testing.T, token, content string) string {
	t.Helper()
	today := strfmt.Date(time.Now().UTC()).String()
	resp, body := ts.do(t, "POST", "/api/diaries", token, map[string]string{"content": content, "date": today})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["diaryId"].(string)
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t, ai.NewStatic(), true)

	resp, _ := ts.do(t, "GET", "/api/feedback/usage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, "GET", "/api/feedback/usage", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "UP", body["status"])
}

func TestRouter_DevTokenRejectsMalformedUserID(t *testing.T) {
	ts := newTestServer(t, ai.NewStatic(), true)
	resp, body := ts.do(t, "POST", "/api/auth/dev-token", "", map[string]string{"userId": "Alice!"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "userId must match")
}

func TestRouter_DevTokenDisabled(t *testing.T) {
	ts := newTestServer(t, ai.NewStatic(), false)
	resp, _ := ts.do(t, "POST", "/api/auth/dev-token", "", map[string]string{"userId": "u1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeedbackFlow(t *testing.T) {
	ts := newTestServer(t, ai.NewStatic(), true)
	alice := ts.login(t, "alice")
	bob := ts.login(t, "bob")

	d1 := ts.diary(t, alice, "climbed the hill behind the house")
	d2 := ts.diary(t, alice, "read two chapters")
	d3 := ts.diary(t, alice, "slept early")

	resp, body := ts.do(t, "POST", "/api/diaries/"+d1+"/feedback", alice, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "encouraging", body["feedbackStyle"])

	resp, _ = ts.do(t, "POST", "/api/diaries/"+d1+"/feedback", alice, map[string]string{"feedbackStyle": "honest"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = ts.do(t, "POST", "/api/diaries/"+d2+"/feedback", alice, map[string]string{"feedbackStyle": "loud"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = ts.do(t, "POST", "/api/diaries/"+d2+"/feedback", bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, "POST", "/api/diaries/"+d2+"/feedback", alice, map[string]string{"feedbackStyle": "Honest"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = ts.do(t, "POST", "/api/diaries/"+d3+"/feedback", alice, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body["message"], "max 2")

	resp, body = ts.do(t, "GET", "/api/feedback/usage", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["usedCount"])
	assert.Equal(t, float64(0), body["remainingCount"])

	resp, _ = ts.do(t, "GET", "/api/diaries/"+d1+"/feedback", bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, body = ts.do(t, "GET", "/api/diaries/"+d1+"/feedback", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, d1, body["diaryId"])

	resp, _ = ts.do(t, "DELETE", "/api/diaries/"+d1+"/feedback", alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = ts.do(t, "DELETE", "/api/diaries/"+d1+"/feedback", alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = ts.do(t, "GET", "/api/feedback/usage", alice, nil)
	assert.Equal(t, float64(1), body["usedCount"])

	today := strfmt.Date(time.Now().UTC()).String()
	resp, body = ts.do(t, "GET", "/api/feedback/history?startDate="+today+"&endDate="+today, alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, _ := body["items"].([]any)
	assert.Len(t, items, 1)

	resp, _ = ts.do(t, "GET", "/api/feedback/history?startDate=yesterday&endDate="+today, alice, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.do(t, "POST", "/api/feedback/period-analysis", alice, map[string]string{"startDate": today, "endDate": today})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["feedbackCount"])
	assert.NotEmpty(t, body["periodSummary"])

	resp, _ = ts.do(t, "POST", "/api/feedback/period-analysis", bob, map[string]string{"startDate": today, "endDate": today})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPeriodAnalysis_FailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t, failingPeriod{}, true)
	alice := ts.login(t, "alice")
	d1 := ts.diary(t, alice, "busy day")
	resp, _ := ts.do(t, "POST", "/api/diaries/"+d1+"/feedback", alice, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	today := strfmt.Date(time.Now().UTC()).String()
	resp, body := ts.do(t, "POST", "/api/feedback/period-analysis", alice, map[string]string{"startDate": today, "endDate": today})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.NotContains(t, body["message"], "secret stack detail")
}

func TestDiaryAndUserRoutes(t *testing.T) {
	ts := newTestServer(t, ai.NewStatic(), true)
	alice := ts.login(t, "alice")
	bob := ts.login(t, "bob")

	resp, body := ts.do(t, "GET", "/api/users/me", alice, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])

	resp, _ = ts.do(t, "POST", "/api/diaries", alice, map[string]string{"content": "x", "date": "01/02/2024"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, body = ts.do(t, "POST", "/api/diaries", alice, map[string]string{"content": "  ", "date": "2024-01-02"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "content is required")

	d := ts.diary(t, alice, "private")
	resp, _ = ts.do(t, "GET", "/api/diaries/"+d, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = ts.do(t, "DELETE", "/api/diaries/"+d, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = ts.do(t, "DELETE", "/api/diaries/"+d, alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = ts.do(t, "GET", "/api/diaries/"+d, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthHandler_Down(t *testing.T) {
	h := NewHealthHandler(fakeHealth{up: false, components: map[string]bool{"store": true, "ai": false}})
	rr := httptest.NewRecorder()
	h.CheckHealth(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "DOWN", body.Status)
	assert.Equal(t, "DOWN", body.Components["ai"])
	assert.Equal(t, "UP", body.Components["store"])
}

func TestRequesterMissing(t *testing.T) {
	h := NewFeedbackHandler(nil)
	rr := httptest.NewRecorder()
	h.GetUsage(rr, httptest.NewRequest(http.MethodGet, "/api/feedback/usage", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
