// Package redis implements the store contracts on Redis via rueidis. Drafts
// and analysis records are stored as JSON values under prefixed keys.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
	"github.com/VetleSkaar/EiT-AI-Project/internal/store"
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements store.Store via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
}

var _ store.Store = (*Store)(nil)

// NewStore creates a Redis store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "draftd:"
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) draftKey(id string) string    { return s.prefix + "draft:" + id }
func (s *Store) analysisKey(id string) string { return s.prefix + "analysis:" + id }

// CreateDraft stores a draft as JSON.
func (s *Store) CreateDraft(ctx context.Context, draft domain.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	cmd := s.client.B().Set().Key(s.draftKey(draft.ID)).Value(string(data)).Nx().Build()
	resp := s.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return fmt.Errorf("draft %q: %w", draft.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("set draft: %w", err)
	}
	return nil
}

// GetDraft fetches a draft by ID.
func (s *Store) GetDraft(ctx context.Context, id string) (domain.Draft, error) {
	cmd := s.client.B().Get().Key(s.draftKey(id)).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return domain.Draft{}, domain.ErrDraftNotFound
		}
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// ListDrafts scans all draft keys and returns drafts newest first.
func (s *Store) ListDrafts(ctx context.Context) ([]domain.Draft, error) {
	pattern := s.draftKey("*")
	var drafts []domain.Draft

	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan drafts: %w", err)
		}
		for _, key := range entry.Elements {
			data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
			if err != nil {
				if rueidis.IsRedisNil(err) {
					continue // deleted between scan and get
				}
				return nil, fmt.Errorf("get draft %s: %w", key, err)
			}
			var d domain.Draft
			if err := json.Unmarshal(data, &d); err != nil {
				return nil, fmt.Errorf("decode draft %s: %w", key, err)
			}
			drafts = append(drafts, d)
		}
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}

	sort.Slice(drafts, func(i, j int) bool {
		if !drafts[i].CreatedAt.Equal(drafts[j].CreatedAt) {
			return drafts[i].CreatedAt.After(drafts[j].CreatedAt)
		}
		return drafts[i].ID < drafts[j].ID
	})
	return drafts, nil
}

// SaveAnalysis writes an analysis record, replacing any previous record for
// the same draft.
func (s *Store) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	cmd := s.client.B().Set().Key(s.analysisKey(rec.DraftID)).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set analysis: %w", err)
	}
	return nil
}

// GetAnalysis fetches the analysis record for a draft.
func (s *Store) GetAnalysis(ctx context.Context, draftID string) (domain.AnalysisRecord, error) {
	cmd := s.client.B().Get().Key(s.analysisKey(draftID)).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return domain.AnalysisRecord{}, domain.ErrAnalysisNotFound
		}
		return domain.AnalysisRecord{}, fmt.Errorf("get analysis: %w", err)
	}
	var rec domain.AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.AnalysisRecord{}, fmt.Errorf("decode analysis: %w", err)
	}
	return rec, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the deadline.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() error {
	s.client.Close()
	return nil
}
