package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeNotFound, "missing")

	if w.Code != http.StatusOK {
		t.Fatalf("envelope errors use http 200, got %d", w.Code)
	}
	var body struct {
		StatusCode int               `json:"status_code"`
		Msg        string            `json:"msg"`
		Data       map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeNotFound || body.Msg != "missing" || body.Data["request_id"] != "req-1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMessageUsesHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Message(c, http.StatusTooManyRequests, "slow down")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["message"] != "slow down" || len(body) != 1 {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 || p.Page != 2 || p.Total != 41 {
		t.Fatalf("unexpected pagination: %+v", p)
	}
	if BuildPagination(1, 0, 5).TotalPage != 0 {
		t.Fatalf("zero page size should yield zero pages")
	}
}
