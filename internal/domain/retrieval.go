package domain

import "context"

// DefaultTopK is the neighbor count used when a caller passes k <= 0.
const DefaultTopK = 10

// Retriever returns the k notices most similar to the query text, ordered by
// non-increasing score. At most min(k, corpus size) results come back. Equal
// scores keep corpus insertion order.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]ScoredNotice, error)
}
