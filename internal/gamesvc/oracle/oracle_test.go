package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJudgeParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Format != "json" || req.Stream {
			t.Errorf("unexpected request options: format=%q stream=%v", req.Format, req.Stream)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: `{"correct": true, "explanation": "a banana is a fruit"}`},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", time.Second)
	v, err := c.Judge(context.Background(), "Name a fruit", "Banana")
	if err != nil {
		t.Fatalf("judge failed: %v", err)
	}
	if !v.Correct {
		t.Errorf("expected correct verdict")
	}
	if v.Explanation == "" {
		t.Errorf("expected explanation")
	}
}

func TestJudgeRejectsMalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "sure, that looks right to me!"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", time.Second)
	if _, err := c.Judge(context.Background(), "Name a fruit", "Banana"); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestJudgeTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", 20*time.Millisecond)
	if _, err := c.Judge(context.Background(), "Name a fruit", "Banana"); err == nil {
		t.Fatal("expected timeout error")
	}
}
