package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestJSON_SetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", origin)
	}
}

func TestStatus_BareEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Status(rec, http.StatusNotFound)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != float64(404) {
		t.Errorf("body status: got %v, want 404", body["status"])
	}
	if len(body) != 1 {
		t.Errorf("body: got %v, want only the status field", body)
	}
}

func TestErrorMessage_InlineEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorMessage(rec, http.StatusInternalServerError, "Missing filter.")

	body := decodeBody(t, rec)
	if body["status"] != float64(500) {
		t.Errorf("body status: got %v, want 500", body["status"])
	}
	if body["error"] != "Missing filter." {
		t.Errorf("body error: got %v", body["error"])
	}
}

func TestException_Classification(t *testing.T) {
	tests := []struct {
		code       int
		wantStatus string
	}{
		{http.StatusNotFound, "clienterror"},
		{http.StatusForbidden, "clienterror"},
		{http.StatusInternalServerError, "servererror"},
		{http.StatusOK, "successful"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Exception(rec, "NotFoundException", "gone", tt.code)

		body := decodeBody(t, rec)
		if body["status"] != tt.wantStatus {
			t.Errorf("code %d: status = %v, want %q", tt.code, body["status"], tt.wantStatus)
		}
		if body["code"] != float64(tt.code) {
			t.Errorf("code %d: body code = %v", tt.code, body["code"])
		}

		errObj, ok := body["error"].(map[string]any)
		if !ok {
			t.Fatalf("code %d: error field missing", tt.code)
		}
		if errObj["type"] != "NotFoundException" || errObj["message"] != "gone" {
			t.Errorf("code %d: error = %v", tt.code, errObj)
		}
		if _, ok := body["data"]; !ok {
			t.Errorf("code %d: data field missing", tt.code)
		}
	}
}
