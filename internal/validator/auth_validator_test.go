package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		want  error
	}{
		{"digits", "9876543210", nil},
		{"plus prefix", "+919876543210", nil},
		{"surrounding spaces", "  9876543210 ", nil},
		{"empty", "   ", ErrPhoneRequired},
		{"too short", "12345", ErrInvalidPhone},
		{"letters", "98765abc10", ErrInvalidPhone},
		{"inner plus", "98+76543210", ErrInvalidPhone},
		{"too long", strings.Repeat("1", 21), ErrInvalidPhone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidatePhone(tc.phone), tc.want)
		})
	}
}

func TestValidateSignup(t *testing.T) {
	assert.NoError(t, ValidateSignup("9876543210", "Asha", "secret"))
	assert.NoError(t, ValidateSignup("9876543210", "", "secret"))

	assert.ErrorIs(t, ValidateSignup("", "Asha", "secret"), ErrPhoneRequired)
	assert.ErrorIs(t, ValidateSignup("9876543210", "Asha", ""), ErrPasswordRequired)
	assert.ErrorIs(t, ValidateSignup("9876543210", "Asha", "12345"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidateSignup("9876543210", strings.Repeat("a", 256), "secret"), ErrNameTooLong)
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("anything", "x"))
	assert.ErrorIs(t, ValidateLogin(" ", "x"), ErrPhoneRequired)
	assert.ErrorIs(t, ValidateLogin("9876543210", ""), ErrPasswordRequired)
}
