package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// parseAnalysis strips any code-fence wrapping, decodes the JSON payload, and
// validates it against the analysis schema. All failures wrap
// domain.ErrMalformedAnalysis so the caller can route to the strict retry.
func parseAnalysis(raw string) (domain.Analysis, error) {
	cleaned := stripFences(strings.TrimSpace(raw))

	var a domain.Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrMalformedAnalysis, err)
	}
	if err := a.Validate(); err != nil {
		return domain.Analysis{}, err
	}
	return a, nil
}

// stripFences removes an enclosing markdown code fence (```json ... ``` or
// bare ```), which some backends add despite the JSON-only instruction.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
