package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumelens-backend/internal/shared/server/respond"
)

func setupResumeRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := newTestService(t)

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("userEmail", "jane@example.com")
	})
	NewHandler(svc).RegisterRoutes(group)
	return router, svc
}

func multipartPDF(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var parsed respond.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return parsed
}

func TestUploadEndToEnd(t *testing.T) {
	router, _ := setupResumeRouter(t)

	body, contentType := multipartPDF(t, "resume", "jane.pdf", []byte("Jane Doe resume text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var parsed struct {
		Resume Record `json:"resume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if parsed.Resume.Name != "Jane Doe" {
		t.Fatalf("unexpected resume: %+v", parsed.Resume)
	}
	if parsed.Resume.RawText != "" {
		t.Fatal("upload response must not echo raw text")
	}
}

func TestUploadMissingFile(t *testing.T) {
	router, _ := setupResumeRouter(t)

	body, contentType := multipartPDF(t, "file", "jane.pdf", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Code; got != respond.CodeFileMissing {
		t.Fatalf("error code: %s", got)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	router, _ := setupResumeRouter(t)

	body, contentType := multipartPDF(t, "resume", "jane.docx", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Code; got != respond.CodeInvalidFileType {
		t.Fatalf("error code: %s", got)
	}
}

func TestUploadOversizedFileRejectedBeforeBudget(t *testing.T) {
	router, svc := setupResumeRouter(t)

	big := bytes.Repeat([]byte("a"), MaxUploadBytes+1)
	body, contentType := multipartPDF(t, "resume", "big.pdf", big)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Code; got != respond.CodeFileTooLarge {
		t.Fatalf("error code: %s", got)
	}

	// The rejection must not have consumed the upload budget.
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Upload(context.Background(), "jane@example.com", []byte("text")); err != nil {
			t.Fatalf("upload %d after rejection: %v", i+1, err)
		}
	}
}

func TestUploadRateLimitedResponse(t *testing.T) {
	router, svc := setupResumeRouter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Upload(ctx, "jane@example.com", []byte("text")); err != nil {
			t.Fatalf("seed upload %d: %v", i+1, err)
		}
	}

	body, contentType := multipartPDF(t, "resume", "jane.pdf", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", resp.Code, resp.Body.String())
	}
	parsed := decodeError(t, resp)
	if parsed.Error.Code != respond.CodeRateLimitExceeded {
		t.Fatalf("error code: %s", parsed.Error.Code)
	}
	details, ok := parsed.Error.Details.(map[string]any)
	if !ok {
		t.Fatalf("details missing: %+v", parsed.Error)
	}
	if retry, ok := details["retryAfter"].(float64); !ok || retry <= 0 {
		t.Fatalf("retryAfter: %v", details["retryAfter"])
	}
}

func TestGetResumeNotFound(t *testing.T) {
	router, _ := setupResumeRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if got := decodeError(t, resp).Error.Code; got != respond.CodeNotFound {
		t.Fatalf("error code: %s", got)
	}
}

func TestListResponseShape(t *testing.T) {
	router, svc := setupResumeRouter(t)

	if _, _, err := svc.Upload(context.Background(), "jane@example.com", []byte("text")); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes?page=1&limit=5", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Pagination.Total != 1 || page.Pagination.Limit != 5 {
		t.Fatalf("pagination: %+v", page.Pagination)
	}
	if len(page.Data) != 1 || page.Data[0].Skills == nil {
		t.Fatalf("data: %+v", page.Data)
	}
}

func TestReanalyzeEndpoint(t *testing.T) {
	router, svc := setupResumeRouter(t)

	rec, _, err := svc.Upload(context.Background(), "jane@example.com", []byte("Jane Doe resume text"))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+rec.ID+"/reanalyze", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDeleteEndpoint(t *testing.T) {
	router, svc := setupResumeRouter(t)

	rec, _, err := svc.Upload(context.Background(), "jane@example.com", []byte("text"))
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/"+rec.ID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if _, err := svc.Get(context.Background(), "jane@example.com", rec.ID); err == nil {
		t.Fatal("record survived delete")
	}
}
