package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"word", "report", false},
		{"with spaces", "quarterly report", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Required(%q) error = %v", tt.input, err)
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "ada@example.com", false},
		{"subdomain", "ada@mail.example.com", false},
		{"empty", "", true},
		{"no at", "ada.example.com", true},
		{"display name", "Ada <ada@example.com>", true},
		{"trailing space", "ada@example.com ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "Email(%q) error = %v", tt.input, err)
		})
	}
}

func TestRequired_FieldError(t *testing.T) {
	err := criterio.Run("title", " ", Required)
	require.Error(t, err)

	var fe criterio.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe, 1)
	assert.Equal(t, "title", fe[0].Field)
	assert.ErrorIs(t, fe[0].Err, ErrRequired)
}
