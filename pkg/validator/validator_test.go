package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

type signup struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Quantity        int    `json:"quantity" validate:"gte=1,lte=10"`
}

func TestValidate_Success(t *testing.T) {
	s := signup{Email: "alice@example.com", Password: "secret", ConfirmPassword: "secret", Quantity: 1}
	assert.NoError(t, Validate(s))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(signup{Password: "secret", ConfirmPassword: "secret", Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["email"])
}

func TestValidate_PasswordMismatch(t *testing.T) {
	err := Validate(signup{Email: "a@b.co", Password: "secret", ConfirmPassword: "other", Quantity: 1})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must match password", valErr.Fields()["confirmPassword"])
	assert.Equal(t, "confirmPassword must match password", valErr.Message())
}

func TestValidate_OutOfRange(t *testing.T) {
	err := Validate(signup{Email: "a@b.co", Password: "x", ConfirmPassword: "x", Quantity: 0})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["quantity"], "1")
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := Validate(signup{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestDecodeAndValidate(t *testing.T) {
	var dst signup
	err := DecodeAndValidate(strings.NewReader(`{"email":"a@b.co","password":"p","confirmPassword":"p","quantity":2}`), &dst)
	require.NoError(t, err)
	assert.Equal(t, 2, dst.Quantity)

	err = DecodeAndValidate(strings.NewReader(`{not json`), &dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
