package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const validMessage = "Hello, this is a test message."

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input [3]string
		want  []string
	}{
		{
			name:  "valid submission",
			input: [3]string{"Al", "al@example.com", validMessage},
			want:  []string{},
		},
		{
			name:  "name too short after trimming",
			input: [3]string{"  A  ", "al@example.com", validMessage},
			want:  []string{ViolationName},
		},
		{
			name:  "name whitespace only",
			input: [3]string{"    ", "al@example.com", validMessage},
			want:  []string{ViolationName},
		},
		{
			name:  "name at upper bound",
			input: [3]string{strings.Repeat("a", 100), "al@example.com", validMessage},
			want:  []string{},
		},
		{
			name:  "name over upper bound",
			input: [3]string{strings.Repeat("a", 101), "al@example.com", validMessage},
			want:  []string{ViolationName},
		},
		{
			name:  "name counted in characters",
			input: [3]string{strings.Repeat("é", 100), "al@example.com", validMessage},
			want:  []string{},
		},
		{
			name:  "missing email",
			input: [3]string{"Al", "", validMessage},
			want:  []string{ViolationEmail},
		},
		{
			name:  "malformed email",
			input: [3]string{"Al", "al-at-example.com", validMessage},
			want:  []string{ViolationEmail},
		},
		{
			name:  "message below lower bound",
			input: [3]string{"Al", "al@example.com", "Too short"},
			want:  []string{ViolationMessage},
		},
		{
			name:  "message at lower bound",
			input: [3]string{"Al", "al@example.com", "0123456789"},
			want:  []string{},
		},
		{
			name:  "message over upper bound",
			input: [3]string{"Al", "al@example.com", strings.Repeat("m", 1001)},
			want:  []string{ViolationMessage},
		},
		{
			name:  "script tag in message",
			input: [3]string{"Al", "al@example.com", "<script>alert(1)</script>"},
			want:  []string{ViolationMarkup},
		},
		{
			name:  "script tag spanning lines",
			input: [3]string{"Al", "al@example.com", "<SCRIPT>\nalert(1)\n</script >"},
			want:  []string{ViolationMarkup},
		},
		{
			name:  "javascript scheme in name",
			input: [3]string{"javascript:x", "al@example.com", validMessage},
			want:  []string{ViolationMarkup},
		},
		{
			name:  "event handler attribute",
			input: [3]string{"Al", "al@example.com", "<img src=x onerror=alert(1)>"},
			want:  []string{ViolationMarkup},
		},
		{
			name:  "violations in fixed order",
			input: [3]string{"A", "bad", "Hi"},
			want:  []string{ViolationName, ViolationEmail, ViolationMessage},
		},
		{
			name:  "markup reported after field rules",
			input: [3]string{"A", "al@example.com", "<script>x</script>"},
			want:  []string{ViolationName, ViolationMarkup},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input[0], tt.input[1], tt.input[2])
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_IsDeterministic(t *testing.T) {
	first := Validate("A", "nope", "Hi")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate("A", "nope", "Hi"))
	}
}
