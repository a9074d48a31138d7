package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	FirstName     string `json:"first_name" validate:"required"`
	PersonalEmail string `json:"personal_email" validate:"required,email"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(registerPayload{
		FirstName:     "Văn A",
		PersonalEmail: "vana@gmail.com",
	})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(registerPayload{PersonalEmail: "not-an-email"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	fields := []string{failures[0].Field, failures[1].Field}
	require.Contains(t, fields, "first_name")
	require.Contains(t, fields, "personal_email")
	require.Contains(t, err.Error(), "personal_email failed on email")
}
