// Package matching provides sharded parallel matching over catalog snapshots.
package matching

import (
	"context"
	"sync"
)

// BatchMatcher scores a requirement against a full catalog snapshot by
// splitting it into shards scored concurrently. Scoring each candidate is
// independent of every other, so the only coordination is the final merge.
type BatchMatcher struct {
	scorer     *Scorer
	validator  *Validator
	maxWorkers int
}

// NewBatchMatcher creates a batch matcher with the given worker count.
func NewBatchMatcher(scorer *Scorer, validator *Validator, maxWorkers int) *BatchMatcher {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &BatchMatcher{
		scorer:     scorer,
		validator:  validator,
		maxWorkers: maxWorkers,
	}
}

// Match scores the requirement against every catalog item, keeps candidates at
// or above minScore, and returns them stably sorted by (score desc, id asc).
// Output is identical regardless of shard scheduling order. Cancellation is
// cooperative: each worker checks the context between shards.
func (bm *BatchMatcher) Match(ctx context.Context, required RequiredComponent, items []InventoryItem, minScore float64) ([]ComponentMatch, error) {
	if len(items) == 0 {
		return []ComponentMatch{}, nil
	}

	workers := bm.maxWorkers
	if workers > len(items) {
		workers = len(items)
	}

	shards := shardItems(items, workers)
	shardResults := make([][]ComponentMatch, len(shards))
	var wg sync.WaitGroup

	for i, shard := range shards {
		wg.Add(1)
		go func(idx int, shard []InventoryItem) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			shardResults[idx] = bm.scoreShard(required, shard, minScore)
		}(i, shard)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []ComponentMatch
	for _, result := range shardResults {
		merged = append(merged, result...)
	}
	RankMatches(merged)
	return merged, nil
}

// scoreShard scores one shard sequentially.
func (bm *BatchMatcher) scoreShard(required RequiredComponent, shard []InventoryItem, minScore float64) []ComponentMatch {
	var matches []ComponentMatch
	for _, item := range shard {
		score, matchType := bm.scorer.Score(required, item)
		if matchType == MatchTypeNone || score < minScore {
			continue
		}

		flags, differences := bm.validator.CheckCompatibility(required, item, nil, bm.scorer.config.Tolerance)
		match := ComponentMatch{
			ItemID:        item.ID,
			Score:         score,
			MatchType:     matchType,
			Compatibility: flags,
			Differences:   differences,
		}
		if matchType == MatchTypeFuzzy {
			match.Recommendations = append(match.Recommendations,
				"verify candidate against the required specifications before ordering")
		}
		matches = append(matches, match)
	}
	return matches
}

// shardItems splits items into n near-equal contiguous shards.
func shardItems(items []InventoryItem, n int) [][]InventoryItem {
	if n <= 1 {
		return [][]InventoryItem{items}
	}
	shards := make([][]InventoryItem, 0, n)
	size := (len(items) + n - 1) / n
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		shards = append(shards, items[start:end])
	}
	return shards
}
