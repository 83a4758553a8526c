package analysis

import (
	"fmt"
	"strings"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// buildPrompt renders the draft and its retrieved neighbors into the analysis
// prompt. Every free-text field of a neighbor is truncated here regardless of
// what the caller did upstream; the bound is a safety invariant of the
// generator, not an optimization.
func buildPrompt(draft domain.Draft, neighbors []domain.ScoredNotice, maxChars int) string {
	var b strings.Builder

	b.WriteString("You are an expert in public procurement analysis. ")
	b.WriteString("Analyze the following procurement draft and provide a detailed analysis.\n\n")

	b.WriteString("PROCUREMENT DRAFT:\n")
	fmt.Fprintf(&b, "Title: %s\n", truncate(draft.Title, maxChars))
	fmt.Fprintf(&b, "Description: %s\n", truncate(draft.Description, maxChars))
	if draft.CPV != "" {
		fmt.Fprintf(&b, "CPV Code: %s\n", draft.CPV)
	}

	b.WriteString("\nSIMILAR PAST NOTICES:\n")
	if len(neighbors) == 0 {
		b.WriteString("No similar notices found.\n")
	}
	for i, sn := range neighbors {
		fmt.Fprintf(&b, "Notice %d:\n", i+1)
		fmt.Fprintf(&b, "  ID: %s\n", sn.Notice.ID)
		fmt.Fprintf(&b, "  Title: %s\n", truncate(sn.Notice.Title, maxChars))
		if sn.Notice.Buyer != "" {
			fmt.Fprintf(&b, "  Buyer: %s\n", truncate(sn.Notice.Buyer, maxChars))
		}
		if len(sn.Notice.CPVCodes) > 0 {
			fmt.Fprintf(&b, "  CPV: %s\n", strings.Join(sn.Notice.CPVCodes, ", "))
		}
		if sn.Notice.PublishedDate != "" {
			fmt.Fprintf(&b, "  Published: %s\n", sn.Notice.PublishedDate)
		}
		fmt.Fprintf(&b, "  Similarity Score: %.3f\n", sn.Score)
		if excerpt := sn.Notice.Excerpt; excerpt != "" {
			fmt.Fprintf(&b, "  Description: %s\n", truncate(excerpt, maxChars))
		} else if sn.Notice.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", truncate(sn.Notice.Description, maxChars))
		}
		b.WriteString("\n")
	}

	b.WriteString(`RUBRIC PRIORITIES:
When analyzing this procurement draft, prioritize the following dimensions:
1. Risk Management: potential risks, mitigation strategies, contract safeguards
2. Sustainability & Social Values: environmental impact, social responsibility, ethics
3. Transparency & Fair Competition: clarity of requirements, accessibility to bidders, fairness
4. Innovation & Forward-Thinking: modern approaches, technological advancement, future-readiness

Respond with a single JSON object ONLY. Do not include any text before or after the JSON.
Your response must be valid JSON matching this exact structure:
{
  "similar_notices_ranked": [
    {"notice_id": "string", "score": 0.0, "title": "string", "buyer": "string", "cpv_codes": ["string"], "published_date": "string"}
  ],
  "overlap_summary": "string - key overlaps and differences with similar notices",
  "qualitative_analysis": {
    "risk_management": "string",
    "sustainability_social_values": "string",
    "transparency_fair_competition": "string",
    "innovation_forward_thinking": "string"
  },
  "recommendation": {
    "decision": "one of: approve, revise, reject, review_required",
    "rationale": "string"
  },
  "confidence": 0.0,
  "caveats": "string - limitations, assumptions, caveats"
}
`)

	return b.String()
}

// strictPromptSuffix is appended for the single retry after a malformed
// response.
const strictPromptSuffix = `
CRITICAL: Your response must be ONLY valid JSON. No markdown, no code blocks, no explanations.
Start your response with { and end with }.
Ensure all strings are properly quoted and all JSON syntax is correct.`

// truncate cuts s to at most maxChars bytes, at a rune boundary.
func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := s[:maxChars]
	for len(cut) > 0 && !isRuneStart(s[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
