package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string  `validate:"required,max=150,username"`
	NickName string  `validate:"max=3"`
	Email    string  `json:"mail" validate:"omitempty,email"`
	Password string  `validate:"min=8"`
	Title    *string `validate:"omitempty,max=5"`
	Text     string  `validate:"notblank"`
	Slug     string  `validate:"omitempty,slug"`
}

func TestValidationFields(t *testing.T) {
	long := "too long"
	fields := ValidationFields(&signupForm{
		Username: "bad name",
		Email:    "nowhere",
		Password: "short",
		Title:    &long,
		Text:     "   ",
		Slug:     "no spaces",
		NickName: "long",
	})
	assert.Equal(t, map[string]string{
		"username": "username may contain only letters, digits and @/./+/-/_",
		"mail":     "enter a valid email address",
		"password": "password must be at least 8 characters",
		"title":    "title must be at most 5 characters",
		"text":     "text is required",
		"slug":     "slug may contain only letters, digits, hyphens and underscores",
		"nickName": "nickName must be at most 3 characters",
	}, fields)
}

func TestValidationFieldsAcceptsValidForm(t *testing.T) {
	assert.Nil(t, ValidationFields(&signupForm{
		Username: "alice.b+1@x",
		Password: "password123",
		Text:     "hello",
	}))
	assert.NoError(t, Validate(&signupForm{Username: "alice", Password: "password123", Text: "hi"}))
}

func TestValidateReportsFirstRulePerField(t *testing.T) {
	err := Validate(&signupForm{Username: strings.Repeat("a", 151), Password: "password123", Text: "x"})
	require.Error(t, err)

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrInvalidInput, appErr.Code)
	assert.Equal(t, "username must be at most 150 characters", appErr.Fields["username"])
	assert.Len(t, appErr.Fields, 1)
}
