package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactorShouldRedact(t *testing.T) {
	r := NewRedactor([]string{"custom-secret"})

	cases := []struct {
		key  string
		want bool
	}{
		{"token", true},
		{"api_key", true},
		{"Authorization", true},
		{"password", true},
		{"custom-secret-value", true},
		{"name", false},
		{"description", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, r.ShouldRedact(tc.key), "key=%s", tc.key)
	}
}

func TestRedactorMask(t *testing.T) {
	r := NewRedactor(nil)
	assert.Equal(t, redactedPlaceholder, r.Mask("secretToken", "hunter2"))
	assert.Equal(t, "hello", r.Mask("message", "hello"))
}

func TestToFieldsRedactsSecretKeys(t *testing.T) {
	r := NewRedactor(nil)
	fields := toFields(r, "password", "hunter2", "name", "alice")
	assert.Len(t, fields, 2)
	assert.Equal(t, redactedPlaceholder, fields[0].String)
}
