package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/groupfund/backend/internal/models"
)

type testStruct struct {
	Email  string `validate:"required,email"`
	Amount int64  `validate:"required,gt=0"`
}

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&testStruct{Email: "a@b.com", Amount: 10})
		assert.NoError(t, err)
	})

	t.Run("invalid struct", func(t *testing.T) {
		err := vh.ValidateStruct(&testStruct{Email: "not-an-email", Amount: -5})
		assert.Error(t, err)
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "Something went wrong", resp.Error)
		assert.Empty(t, resp.Details)
	})

	t.Run("with validation details", func(t *testing.T) {
		vh := NewValidationHelper()
		err := vh.ValidateStruct(&testStruct{Email: "bad", Amount: 0})
		assert.Error(t, err)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)

		var resp ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		assert.Equal(t, "Validation failed", resp.Error)
		assert.Contains(t, resp.Details, "Email")
		assert.Contains(t, resp.Details, "Amount")
	})
}

func TestSendServiceError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.ErrInvalidInput, http.StatusBadRequest},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrStoreFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			SendServiceError(w, tc.err)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"Email":"a@b.com","Amount":5}`))
		w := httptest.NewRecorder()

		var dst testStruct
		err := DecodeJSON(w, r, &dst)
		assert.NoError(t, err)
		assert.Equal(t, int64(5), dst.Amount)
	})

	t.Run("rejects trailing objects", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"Amount":5}{"Amount":6}`))
		w := httptest.NewRecorder()

		var dst testStruct
		err := DecodeJSON(w, r, &dst)
		assert.Error(t, err)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"Bogus":1}`))
		w := httptest.NewRecorder()

		var dst testStruct
		err := DecodeJSON(w, r, &dst)
		assert.Error(t, err)
	})
}
