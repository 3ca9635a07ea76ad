package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hitoshi/portallink/internal/model"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v\nraw: %s", err, w.Body.String())
	}
	return body
}

func TestWriteAPIError_RelaysStatusAndBody(t *testing.T) {
	w := httptest.NewRecorder()

	WriteAPIError(w, &model.APIError{
		Status:  http.StatusConflict,
		Code:    model.ErrSlugExists,
		Message: "slug already taken",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	want := model.ErrorResponse{Error: "ErrSlugExists", Message: "slug already taken"}
	if diff := cmp.Diff(want, decodeErrorBody(t, w)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAPIError_UnknownCodeIsRelayedAsIs(t *testing.T) {
	w := httptest.NewRecorder()

	WriteAPIError(w, &model.APIError{Status: http.StatusTeapot, Code: "ErrBrandNew", Message: "new"})

	if body := decodeErrorBody(t, w); body.Error != "ErrBrandNew" {
		t.Errorf("error = %q, want %q", body.Error, "ErrBrandNew")
	}
}

func TestWriteAPIError_NonErrorStatusBecomes500(t *testing.T) {
	for _, status := range []int{0, http.StatusOK, http.StatusFound, 600} {
		w := httptest.NewRecorder()
		WriteAPIError(w, &model.APIError{Status: status, Code: model.ErrInternal, Message: "x"})
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status %d: written %d, want 500", status, w.Code)
		}
	}
}

func TestWriteInternalServerError_UsesGenericMessage(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	want := model.ErrorResponse{Error: "ErrInternal", Message: model.GenericErrorMessage}
	if diff := cmp.Diff(want, decodeErrorBody(t, w)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}
