package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with underscore", "alice_b", false},
		{"valid with hyphen", "alice-b", false},
		{"valid with digits", "alice99", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"exactly 30", strings.Repeat("a", 30), false},
		{"spaces", "alice b", true},
		{"special characters", "alice!", true},
		{"leading underscore", "_alice", true},
		{"trailing hyphen", "alice-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"valid with plus", "alice+feed@example.com", false},
		{"valid subdomain", "alice@mail.example.co.uk", false},
		{"missing at", "alice.example.com", true},
		{"missing domain", "alice@", true},
		{"missing tld", "alice@example", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 129)))
	assert.NoError(t, ValidatePassword("password123"))
	assert.NoError(t, ValidatePassword(strings.Repeat("x", 128)))
}

func TestValidateMessageText(t *testing.T) {
	assert.Error(t, ValidateMessageText(""))
	assert.NoError(t, ValidateMessageText("just right"))
	assert.NoError(t, ValidateMessageText(strings.Repeat("x", 140)))
	assert.Error(t, ValidateMessageText(strings.Repeat("x", 141)))

	// Multi-byte runes count as single characters.
	assert.NoError(t, ValidateMessageText(strings.Repeat("é", 140)))
}

func TestValidateBio(t *testing.T) {
	assert.NoError(t, ValidateBio(""))
	assert.NoError(t, ValidateBio(strings.Repeat("b", 500)))
	assert.Error(t, ValidateBio(strings.Repeat("b", 501)))
}
