package plagiarism

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/veritext/veritext/internal/corpus"
)

// chunkDelimiter splits text into sentence-granularity chunks. Not
// locale-aware; abbreviations split too, which the minimum chunk length
// filters out in practice.
const chunkDelimiter = ". "

// Match is one chunk/reference pair that scored above the threshold.
type Match struct {
	MatchedText   string
	Source        corpus.Reference
	Score         float64
	StartPosition int
	EndPosition   int
}

// Detector scores text chunks against a reference corpus.
type Detector struct {
	threshold float64
	minChunk  int
	workers   int
}

// NewDetector creates a detector. threshold is the minimum combined score
// that emits a match, minChunk the minimum chunk length in bytes, workers the
// concurrent scoring limit.
func NewDetector(threshold float64, minChunk, workers int) *Detector {
	if workers < 1 {
		workers = 1
	}
	return &Detector{threshold: threshold, minChunk: minChunk, workers: workers}
}

// Check scores every retained chunk of text against every reference and
// returns the pairs above the threshold. Scoring fans out over a bounded
// worker group; results are merged in (chunk, reference) order so repeated
// runs over the same input produce the same sequence.
//
// Start positions resolve to the first occurrence of the chunk within text,
// so a sentence repeated verbatim reports the first occurrence's offset for
// every match. Downstream consumers only need a valid span.
func (d *Detector) Check(ctx context.Context, text string, refs []corpus.Reference) ([]Match, error) {
	chunks := d.chunks(text)
	if len(chunks) == 0 || len(refs) == 0 {
		return nil, nil
	}

	// One result slot per chunk/reference pair keeps the merge deterministic
	// regardless of scheduling.
	results := make([]*Match, len(chunks)*len(refs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for ci, chunk := range chunks {
		for ri, ref := range refs {
			slot := ci*len(refs) + ri
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				score := CombinedScore(chunk, ref.Text)
				if score <= d.threshold {
					return nil
				}
				start := strings.Index(text, chunk)
				results[slot] = &Match{
					MatchedText:   chunk,
					Source:        ref,
					Score:         score,
					StartPosition: start,
					EndPosition:   start + len(chunk),
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Match
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

// chunks splits text on the sentence delimiter, trims each piece, and drops
// chunks shorter than the minimum length.
func (d *Detector) chunks(text string) []string {
	parts := strings.Split(text, chunkDelimiter)
	var out []string
	for _, p := range parts {
		chunk := strings.TrimSpace(p)
		if len(chunk) < d.minChunk {
			continue
		}
		out = append(out, chunk)
	}
	return out
}
