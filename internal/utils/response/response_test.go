package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusNotFound, Message("Student not found!")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Student not found!"}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	got := GeneralError("Invalid request body", errors.New("unexpected EOF"))
	assert.Equal(t, Response{Message: "Invalid request body", Error: "unexpected EOF"}, got)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Name  string `validate:"required"`
		Email string `validate:"required"`
		Age   int    `validate:"min=1"`
	}

	err := validator.New().Struct(payload{})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	got := ValidationError("Missing required fields!", verrs)
	assert.Equal(t, "Missing required fields!", got.Message)
	assert.Equal(t, "field Name is required, field Email is required, field Age is invalid", got.Error)
}
