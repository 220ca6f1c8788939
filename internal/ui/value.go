package ui

import (
	"bytes"
	"encoding/json"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/fieldstore"
)

// FormatValue renders a stored field value for display
func FormatValue(raw json.RawMessage) string {
	if fieldstore.IsAbsent(raw) {
		return "(no value)"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
