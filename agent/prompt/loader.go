package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/medical.txt
var medicalRaw string

// Medical returns the system directive for the medical assistant,
// trimmed. The embed is compile-time, so this is safe to call
// concurrently.
func Medical() string {
	return strings.TrimSpace(medicalRaw)
}
