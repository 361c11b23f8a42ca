package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad %s", "input"), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{Forbiddenf("nope"), http.StatusForbidden},
		{NotFoundOr(gorm.ErrRecordNotFound, "quiz"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrUsernameTaken), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Fatalf("StatusOf(%v): got=%d want=%d", tc.err, got, tc.want)
		}
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err         error
		wantStatus  int
		wantMessage string
	}{
		{NotFoundf("quiz"), http.StatusNotFound, "not found: quiz"},
		{errors.New("dial tcp 10.0.0.1:3306: refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleError(c, tc.err)

		if rec.Code != tc.wantStatus {
			t.Fatalf("status: got=%d want=%d", rec.Code, tc.wantStatus)
		}
		var body Response
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Message != tc.wantMessage || body.Code != tc.wantStatus {
			t.Fatalf("body: got=%+v", body)
		}
	}
}

func TestNotFoundOrPassesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	if got := NotFoundOr(boom, "x"); got != boom {
		t.Fatalf("expected original error, got %v", got)
	}
}
