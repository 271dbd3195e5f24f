package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	tests := []struct {
		input   string
		want    Theme
		wantErr bool
	}{
		{"light", ThemeLight, false},
		{" DARK ", ThemeDark, false},
		{"system", ThemeSystem, false},
		{"", ThemeSystem, false},
		{"solarized", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTheme(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, Settings{Theme: ThemeDark}.Validate())
	assert.ErrorIs(t, Settings{Theme: "blue"}.Validate(), ErrInvalidTheme)
	assert.ErrorIs(t, Settings{DefaultProjectID: -1}.Validate(), ErrInvalidProjectID)
	assert.ErrorIs(t, Settings{SystemPrompt: strings.Repeat("x", MaxSystemPromptLength+1)}.Validate(), ErrSystemPromptTooLong)
}
