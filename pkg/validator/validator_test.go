package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type mintPayload struct {
	Email      string `json:"email" validate:"omitempty,email"`
	RedirectTo string `json:"redirectTo" validate:"omitempty,uri"`
	Password   string `json:"password" validate:"required,min=8"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&mintPayload{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]string, len(failures))
	for _, f := range failures {
		fields[f.Field] = f.Tag
	}
	require.Equal(t, "email", fields["email"])
	require.Equal(t, "min", fields["password"])
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&mintPayload{Email: "user@example.com", Password: "longenough"})
	require.NoError(t, err)
}

func TestValidationErrorsMessage(t *testing.T) {
	ve := ValidationErrors{
		{Field: "password", Tag: "min", Param: "8"},
		{Field: "email", Tag: "email"},
	}
	require.Equal(t, "password failed on min=8; email failed on email", ve.Error())
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
