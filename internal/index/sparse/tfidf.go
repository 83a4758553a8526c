// Package sparse provides a TF-IDF retrieval index. It needs no embedding
// service: the whole corpus is vectorized locally at fit time and queries are
// ranked by cosine similarity in sparse term space.
package sparse

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// Index is a TF-IDF index over a static corpus. Fit builds the vocabulary and
// document-frequency statistics once; incremental updates are not supported —
// re-fitting requires the full corpus again. Fit is serialized against
// concurrent Query calls.
type Index struct {
	mu      sync.RWMutex
	fitted  bool
	notices []domain.Notice
	vocab   map[string]int    // term -> column
	idf     []float64         // per column
	docs    []map[int]float64 // L2-normalized tf-idf vectors, sparse
}

// New creates an unfitted index. Query before a successful Fit returns
// ErrRetrieverUnavailable.
func New() *Index {
	return &Index{}
}

// Fit builds vocabulary, document frequencies, and the document matrix over
// the corpus. Calling Fit again rebuilds from scratch.
func (ix *Index) Fit(corpus []domain.Notice) error {
	if len(corpus) == 0 {
		return fmt.Errorf("empty corpus: %w", domain.ErrRetrieverUnavailable)
	}

	vocab := make(map[string]int)
	termCounts := make([]map[int]float64, len(corpus))
	df := []int{}

	for i, notice := range corpus {
		counts := make(map[int]float64)
		seen := make(map[int]bool)
		for _, term := range tokenize(notice.Text()) {
			col, ok := vocab[term]
			if !ok {
				col = len(vocab)
				vocab[term] = col
				df = append(df, 0)
			}
			counts[col]++
			if !seen[col] {
				seen[col] = true
				df[col]++
			}
		}
		termCounts[i] = counts
	}

	// Smoothed idf, as if one extra document contained every term.
	n := float64(len(corpus))
	idf := make([]float64, len(df))
	for col, d := range df {
		idf[col] = math.Log((1+n)/(1+float64(d))) + 1
	}

	docs := make([]map[int]float64, len(corpus))
	for i, counts := range termCounts {
		vec := make(map[int]float64, len(counts))
		for col, tf := range counts {
			vec[col] = tf * idf[col]
		}
		normalizeSparse(vec)
		docs[i] = vec
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.notices = append([]domain.Notice(nil), corpus...)
	ix.vocab = vocab
	ix.idf = idf
	ix.docs = docs
	ix.fitted = true
	return nil
}

// Len returns the corpus size, zero before Fit.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.notices)
}

// Query vectorizes the text against the fitted vocabulary (out-of-vocabulary
// terms contribute zero weight) and returns the top-k notices by cosine
// similarity, non-increasing, ties stable by corpus order.
func (ix *Index) Query(text string, k int) ([]domain.ScoredNotice, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.fitted {
		return nil, fmt.Errorf("tf-idf index not fitted: %w", domain.ErrRetrieverUnavailable)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	query := make(map[int]float64)
	for _, term := range tokenize(text) {
		if col, ok := ix.vocab[term]; ok {
			query[col]++
		}
	}
	for col := range query {
		query[col] *= ix.idf[col]
	}
	normalizeSparse(query)

	scored := make([]domain.ScoredNotice, len(ix.notices))
	for i, doc := range ix.docs {
		scored[i] = domain.ScoredNotice{
			Notice: ix.notices[i],
			Score:  dotSparse(query, doc),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalizeSparse scales a sparse vector to unit L2 norm in place.
func normalizeSparse(vec map[int]float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for col := range vec {
		vec[col] /= norm
	}
}

// dotSparse computes the dot product of two sparse vectors, iterating the
// smaller one.
func dotSparse(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for col, va := range a {
		if vb, ok := b[col]; ok {
			dot += va * vb
		}
	}
	return dot
}
