// Package contextindex is an in-memory fuzzy index over document names and
// extensions.
//
// Matching uses github.com/sahilm/fuzzy. A match's relevance is its
// compactness: query length divided by the span of matched characters, so
// contiguous matches score 1 and scattered ones approach 0. Matches whose
// relevance falls below 1-Threshold are discarded.
package contextindex

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/wilbur182/docchat/internal/catalog"
)

// DefaultThreshold is the maximum distance (1 - relevance) a match may have.
const DefaultThreshold = 0.4

// Result is one ranked hit.
type Result struct {
	Doc       catalog.Document
	Relevance float64
	score     int
	order     int
}

// Index is immutable once built. Rebuild it whenever the catalog changes.
type Index struct {
	docs      []catalog.Document
	names     fieldSource
	exts      fieldSource
	threshold float64
}

// fieldSource adapts one lower-cased document field to fuzzy.Source.
type fieldSource []string

func (f fieldSource) String(i int) string { return f[i] }
func (f fieldSource) Len() int            { return len(f) }

// Build indexes docs with the default threshold.
func Build(docs []catalog.Document) *Index {
	return BuildWithThreshold(docs, DefaultThreshold)
}

// BuildWithThreshold indexes docs. Threshold is clamped to [0, 1].
func BuildWithThreshold(docs []catalog.Document, threshold float64) *Index {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	idx := &Index{
		docs:      append([]catalog.Document(nil), docs...),
		names:     make(fieldSource, len(docs)),
		exts:      make(fieldSource, len(docs)),
		threshold: threshold,
	}
	for i, d := range docs {
		idx.names[i] = strings.ToLower(d.Name)
		idx.exts[i] = strings.ToLower(d.Extension)
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int { return len(idx.docs) }

// Search returns documents matching query ordered by non-increasing
// relevance. Callers handle the empty query; it yields no results here.
//
// Matching is subsequence only: every query rune must appear in the name
// in order, so typos and transpositions ("reprot" for "report") never
// match. The threshold only limits how scattered a match may be.
func (idx *Index) Search(query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || len(idx.docs) == 0 {
		return nil
	}
	qlen := len([]rune(q))

	best := make(map[int]Result)
	collect := func(src fieldSource) {
		for _, m := range fuzzy.FindFrom(q, src) {
			rel := compactness(m, qlen)
			if rel < 1-idx.threshold {
				continue
			}
			cur, ok := best[m.Index]
			if !ok || rel > cur.Relevance || (rel == cur.Relevance && m.Score > cur.score) {
				best[m.Index] = Result{Doc: idx.docs[m.Index], Relevance: rel, score: m.Score, order: m.Index}
			}
		}
	}
	collect(idx.names)
	collect(idx.exts)

	out := make([]Result, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].order < out[j].order
	})
	return out
}

// Documents is Search without the scores.
func (idx *Index) Documents(query string) []catalog.Document {
	results := idx.Search(query)
	docs := make([]catalog.Document, len(results))
	for i, r := range results {
		docs[i] = r.Doc
	}
	return docs
}

// compactness maps a match to (0, 1]. MatchedIndexes are byte offsets, so
// the span is measured in runes of the matched substring.
func compactness(m fuzzy.Match, qlen int) float64 {
	if len(m.MatchedIndexes) == 0 {
		return 0
	}
	first := m.MatchedIndexes[0]
	last := m.MatchedIndexes[len(m.MatchedIndexes)-1]
	if last < first || last >= len(m.Str) {
		return 0
	}
	span := len([]rune(m.Str[first:last])) + 1
	if span < qlen {
		span = qlen
	}
	return float64(qlen) / float64(span)
}
