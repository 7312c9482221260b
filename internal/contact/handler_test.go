package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	mailer "resumelens-backend/internal/mail"
	"resumelens-backend/internal/ratelimit"
	"resumelens-backend/internal/shared/server/respond"
	"resumelens-backend/internal/shared/storage/kv"
)

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func setupContactRouter(t *testing.T) (*gin.Engine, *fakeMailer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	fake := &fakeMailer{}
	handler := NewHandler(fake, ratelimit.New(kv.NewRedisAddr(mr.Addr())), "noreply@resumelens.app", "team@resumelens.app")

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, fake
}

func submit(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func validPayload() gin.H {
	return gin.H{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "I would like to know more about the analysis.",
	}
}

func TestContactSendsMail(t *testing.T) {
	router, fake := setupContactRouter(t)

	resp := submit(t, router, validPayload())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(fake.sent))
	}
	msg := fake.sent[0]
	if msg.To != "team@resumelens.app" || msg.ReplyTo != "jane@example.com" {
		t.Fatalf("message addressing: %+v", msg)
	}
	if msg.Subject != "Contact Form: Jane Doe" {
		t.Fatalf("subject: %q", msg.Subject)
	}
}

func TestContactValidation(t *testing.T) {
	router, fake := setupContactRouter(t)

	resp := submit(t, router, gin.H{"name": "J", "email": "nope", "message": "short"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if len(fake.sent) != 0 {
		t.Fatal("invalid submission must not send mail")
	}
}

func TestContactRejectsHeaderInjection(t *testing.T) {
	router, fake := setupContactRouter(t)

	payload := validPayload()
	payload["name"] = "Jane\r\nBcc: victim@evil.com"
	resp := submit(t, router, payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(fake.sent) != 0 {
		t.Fatal("a name with line breaks must never reach the mailer")
	}
	var parsed respond.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Error.Code != respond.CodeValidation {
		t.Fatalf("error code: %s", parsed.Error.Code)
	}
}

func TestContactRateLimited(t *testing.T) {
	router, _ := setupContactRouter(t)

	for i := 0; i < 5; i++ {
		if resp := submit(t, router, validPayload()); resp.Code != http.StatusOK {
			t.Fatalf("submission %d: %d", i+1, resp.Code)
		}
	}
	resp := submit(t, router, validPayload())
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	var parsed respond.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Error.Code != respond.CodeRateLimitExceeded {
		t.Fatalf("error code: %s", parsed.Error.Code)
	}
}

func TestContactMailFailure(t *testing.T) {
	router, fake := setupContactRouter(t)
	fake.err = errors.New("smtp down")

	resp := submit(t, router, validPayload())
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
