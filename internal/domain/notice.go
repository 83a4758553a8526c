package domain

// Notice is an indexed procurement notice. Notices are append-only: once indexed
// they are never mutated in place, only replaced by a full re-index.
type Notice struct {
	ID             string   `json:"notice_id"`
	URL            string   `json:"url,omitempty"`
	Title          string   `json:"title"`
	Buyer          string   `json:"buyer,omitempty"`
	CPVCodes       []string `json:"cpv_codes,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"` // YYYY-MM-DD or empty
	DeadlineDate   string   `json:"deadline_date,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	Procedure      string   `json:"procedure,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Description    string   `json:"description_raw,omitempty"`
	Excerpt        string   `json:"description_excerpt,omitempty"`
}

// Text returns the text used for vectorization: title plus the best available
// description variant.
func (n Notice) Text() string {
	desc := n.Description
	if desc == "" {
		desc = n.Excerpt
	}
	if desc == "" {
		return n.Title
	}
	return n.Title + "\n" + desc
}

// ScoredNotice is a single retrieval hit. Score semantics depend on the metric
// of the index that produced it (cosine scores are bounded [0,1], L2-derived
// scores are inverted distances); scores from different metrics must not be
// compared.
type ScoredNotice struct {
	Notice Notice
	Score  float64
}
