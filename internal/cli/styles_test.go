package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatters_PrefixIcons(t *testing.T) {
	tests := []struct {
		format func(string) string
		name   string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: successIcon},
		{name: "error", format: FormatError, icon: errorIcon},
		{name: "warning", format: FormatWarning, icon: warningIcon},
		{name: "info", format: FormatInfo, icon: infoIcon},
		{name: "title", format: FormatTitle, icon: reportIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("groceries")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "groceries")
		})
	}
}

func TestRenderBox_IncludesTitleAndContent(t *testing.T) {
	out := RenderBox("Import Complete", "12 transactions")
	assert.Contains(t, out, "Import Complete")
	assert.Contains(t, out, "12 transactions")
}
