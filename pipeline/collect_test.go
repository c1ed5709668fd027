package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsauto/storage"
)

type fakeSearcher struct {
	results map[string][]storage.VideoCandidate
	errs    map[string]error
}

func (f *fakeSearcher) Search(_ context.Context, keyword string, _ int64) ([]storage.VideoCandidate, error) {
	if err := f.errs[keyword]; err != nil {
		return nil, err
	}
	return f.results[keyword], nil
}

func candidate(id string) storage.VideoCandidate {
	return storage.VideoCandidate{ID: id, Title: "Title " + id}
}

func TestCollectorAggregatesKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_list.json")
	collector := &Collector{
		Searcher: &fakeSearcher{results: map[string][]storage.VideoCandidate{
			"cats": {candidate("a"), candidate("b")},
			"dogs": {candidate("c")},
		}},
		Keywords:   []string{"cats", "dogs"},
		MaxResults: 10,
		Dedupe:     true,
		OutputPath: path,
		Log:        zerolog.Nop(),
	}

	require.NoError(t, collector.Run(context.Background()))

	saved, err := storage.LoadCandidates(path)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestCollectorDedupesAcrossKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_list.json")
	searcher := &fakeSearcher{results: map[string][]storage.VideoCandidate{
		"cats": {candidate("a"), candidate("b")},
		"dogs": {candidate("b"), candidate("c")},
	}}

	collector := &Collector{
		Searcher:   searcher,
		Keywords:   []string{"cats", "dogs"},
		MaxResults: 10,
		Dedupe:     true,
		OutputPath: path,
		Log:        zerolog.Nop(),
	}
	require.NoError(t, collector.Run(context.Background()))

	saved, err := storage.LoadCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, candidateIDs(saved))

	collector.Dedupe = false
	require.NoError(t, collector.Run(context.Background()))

	saved, err = storage.LoadCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "b", "c"}, candidateIDs(saved))
}

func TestCollectorSkipsFailedKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video_list.json")
	collector := &Collector{
		Searcher: &fakeSearcher{
			results: map[string][]storage.VideoCandidate{"dogs": {candidate("c")}},
			errs:    map[string]error{"cats": fmt.Errorf("quota exceeded")},
		},
		Keywords:   []string{"cats", "dogs"},
		MaxResults: 10,
		OutputPath: path,
		Log:        zerolog.Nop(),
	}

	require.NoError(t, collector.Run(context.Background()))

	saved, err := storage.LoadCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, candidateIDs(saved))
}

func TestCollectorFailsWhenNothingFound(t *testing.T) {
	collector := &Collector{
		Searcher:   &fakeSearcher{errs: map[string]error{"cats": fmt.Errorf("boom")}},
		Keywords:   []string{"cats"},
		MaxResults: 10,
		OutputPath: filepath.Join(t.TempDir(), "video_list.json"),
		Log:        zerolog.Nop(),
	}

	assert.Error(t, collector.Run(context.Background()))
}

func candidateIDs(candidates []storage.VideoCandidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}
