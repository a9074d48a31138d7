package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appValidator "github.com/anhhh1801/Capstone-ECM/pkg/validator"
)

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		name     string
		failures appValidator.ValidationErrors
		want     string
	}{
		{
			name:     "required",
			failures: appValidator.ValidationErrors{{Field: "FirstName", Tag: "required"}},
			want:     "firstname is required",
		},
		{
			name:     "email",
			failures: appValidator.ValidationErrors{{Field: "Email", Tag: "email"}},
			want:     "email must be a valid email address",
		},
		{
			name:     "len",
			failures: appValidator.ValidationErrors{{Field: "Code", Tag: "len", Param: "6"}},
			want:     "code must be exactly 6 characters",
		},
		{
			name: "multiple",
			failures: appValidator.ValidationErrors{
				{Field: "Email", Tag: "required"},
				{Field: "Password", Tag: "min", Param: "6"},
			},
			want: "email is required; password must be at least 6 characters",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, formatValidationError(tc.failures))
		})
	}
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/echo", func(c *gin.Context) {
		var body struct {
			Email string `json:"email" validate:"required,email"`
		}
		if !bindAndValidate(c, &body) {
			return
		}
		c.JSON(http.StatusOK, body)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{not json"))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid JSON payload")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"email":"not-an-email"}`))
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "valid email address")
}

func TestParseUintParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := parseUintParam(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, raw := range []string{"abc", "-1", "0"} {
		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/items/"+raw, nil)
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}
