// Package pipeline implements the four stages of the shorts automation
// pipeline and the driver that chains them. Stages communicate only
// through the artifact files on disk, so each can run standalone.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"shortsauto/storage"
)

// Searcher finds candidate videos for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string, maxResults int64) ([]storage.VideoCandidate, error)
}

// Collector runs the collection stage: search every keyword, aggregate the
// results, and write the candidate list file.
type Collector struct {
	Searcher   Searcher
	Keywords   []string
	MaxResults int
	// Dedupe drops repeated video IDs across keywords, keeping the first
	// occurrence.
	Dedupe     bool
	OutputPath string
	Log        zerolog.Logger
}

// Run executes the stage. A keyword whose search fails is skipped with a
// warning; the stage fails only when every keyword yields nothing or the
// list file cannot be written.
func (c *Collector) Run(ctx context.Context) error {
	var candidates []storage.VideoCandidate

	for _, keyword := range c.Keywords {
		found, err := c.Searcher.Search(ctx, keyword, int64(c.MaxResults))
		if err != nil {
			c.Log.Warn().Err(err).Str("keyword", keyword).Msg("search failed, skipping keyword")
			continue
		}
		c.Log.Info().Str("keyword", keyword).Int("found", len(found)).Msg("searched keyword")
		candidates = append(candidates, found...)
	}

	if c.Dedupe {
		candidates = dedupeByID(candidates)
	}

	if len(candidates) == 0 {
		return fmt.Errorf("collect: no candidates found for any keyword")
	}

	if err := storage.SaveCandidates(c.OutputPath, candidates); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	c.Log.Info().Int("candidates", len(candidates)).Str("file", c.OutputPath).Msg("collection complete")
	return nil
}

func dedupeByID(candidates []storage.VideoCandidate) []storage.VideoCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
