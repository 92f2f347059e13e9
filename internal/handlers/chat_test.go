package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"campusdocs-ai/internal/chat"
	"campusdocs-ai/internal/rag"
	"campusdocs-ai/internal/rag/mocks"
)

func newChatHandler(engine rag.Engine) *ChatHandler {
	return NewChatHandler(chat.NewHandler(engine, 3, 25*time.Second, 3))
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChatHandler_NewSessionAndFollowUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	score := float32(0.9)
	engine := mocks.NewMockEngine(ctrl)
	gomock.InOrder(
		engine.EXPECT().
			Ask(gomock.Any(), "first question", chat.DefaultModel, gomock.Len(0)).
			Return(&rag.Answer{
				Text: "first answer",
				Sources: []rag.ScoredNode{{
					Text:  "supporting text",
					Score: &score,
					Meta:  map[string]any{"file_name": "2024_Guide_Exams.pdf", "page_label": "4", "category": "Guide"},
				}},
			}, nil),
		engine.EXPECT().
			Ask(gomock.Any(), "follow up", chat.DefaultModel, gomock.Len(2)).
			Return(&rag.Answer{Text: "second answer"}, nil),
	)

	h := newChatHandler(engine)

	w := postChat(t, h, `{"message":"first question"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("response missing session_id")
	}
	if resp.Answer != "first answer" {
		t.Errorf("answer = %q, want first answer", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].FileName != "2024_Guide_Exams.pdf" || resp.Sources[0].Score != "90%" {
		t.Fatalf("sources = %+v", resp.Sources)
	}
	if resp.Sources[0].Category != "Guide" {
		t.Errorf("source category = %q, want Guide", resp.Sources[0].Category)
	}
	if resp.Error != "" {
		t.Errorf("error = %q, want none", resp.Error)
	}

	// A follow-up on the same session carries the history.
	w = postChat(t, h, `{"session_id":"`+resp.SessionID+`","message":"follow up"}`)
	var followUp ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&followUp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if followUp.SessionID != resp.SessionID {
		t.Errorf("follow-up session_id = %s, want %s", followUp.SessionID, resp.SessionID)
	}
	if followUp.Answer != "second answer" {
		t.Errorf("follow-up answer = %q", followUp.Answer)
	}
}

func TestChatHandler_QuotaErrorPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().
		Ask(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errDailyQuota())

	w := postChat(t, newChatHandler(engine), `{"message":"question"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with chat-level error", w.Code)
	}

	var resp ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "" {
		t.Errorf("answer = %q, want empty", resp.Answer)
	}
	if !strings.Contains(resp.Error, "daily quota") {
		t.Errorf("error = %q, want daily quota message", resp.Error)
	}
	if len(resp.AlternativeModels) != 2 {
		t.Errorf("alternative_models = %+v, want both fallbacks", resp.AlternativeModels)
	}
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newChatHandler(mocks.NewMockEngine(ctrl))
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestChatHandler_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	w := postChat(t, newChatHandler(mocks.NewMockEngine(ctrl)), "{not json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChatHandler_UnknownSessionGetsFreshOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := mocks.NewMockEngine(ctrl)
	engine.EXPECT().
		Ask(gomock.Any(), "question", chat.DefaultModel, gomock.Len(0)).
		Return(&rag.Answer{Text: "answer"}, nil)

	w := postChat(t, newChatHandler(engine), `{"session_id":"gone-after-restart","message":"question"}`)

	var resp ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID == "gone-after-restart" {
		t.Error("unknown session_id must be replaced, not adopted")
	}
	if resp.Answer != "answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func errDailyQuota() error {
	return errors.New("chat completion failed with status 429: Rate limit reached for model on tokens per day (TPD)")
}
