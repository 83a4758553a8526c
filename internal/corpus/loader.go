// Package corpus loads cleaned procurement notices for indexing.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

const (
	// defaultExcerptMax caps a derived description excerpt.
	defaultExcerptMax = 1200
	ellipsis          = "…"
)

var (
	cpvRe  = regexp.MustCompile(`^\d{8}$`)
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Load reads a cleaned-notice JSON array from path and validates the cleaning
// collaborator's guarantees: unique identifiers, 8-digit CPV codes, ISO dates
// or empty. A violated guarantee is an error — the cleaner promised, the data
// lied.
func Load(path string) ([]domain.Notice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var notices []domain.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	if err := Validate(notices); err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return notices, nil
}

// Validate checks the ingestion-format invariants over a notice set and fills
// a missing excerpt from the full description.
func Validate(notices []domain.Notice) error {
	seen := make(map[string]bool, len(notices))
	for i := range notices {
		n := &notices[i]
		if n.ID == "" {
			return fmt.Errorf("notice %d: empty notice_id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate notice_id %q", n.ID)
		}
		seen[n.ID] = true

		for _, cpv := range n.CPVCodes {
			if !cpvRe.MatchString(cpv) {
				return fmt.Errorf("notice %q: cpv code %q is not 8 digits", n.ID, cpv)
			}
		}
		if n.PublishedDate != "" && !dateRe.MatchString(n.PublishedDate) {
			return fmt.Errorf("notice %q: published_date %q is not YYYY-MM-DD", n.ID, n.PublishedDate)
		}
		if n.DeadlineDate != "" && !dateRe.MatchString(n.DeadlineDate) {
			return fmt.Errorf("notice %q: deadline_date %q is not YYYY-MM-DD", n.ID, n.DeadlineDate)
		}

		if n.Excerpt == "" && n.Description != "" {
			n.Excerpt = makeExcerpt(n.Description, defaultExcerptMax)
		}
	}
	return nil
}

// makeExcerpt truncates text at a word boundary and marks the cut.
func makeExcerpt(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + ellipsis
}
