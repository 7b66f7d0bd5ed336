package usecase

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

const summarizeConcurrency = 4

// TokenCounter measures text length in model tokens. Injected so tests
// can use a plain length function instead of a real tokenizer.
type TokenCounter func(text string) int

// Summarizer condenses a finished conversation into a single summary
// that fits a token budget. Each exchange is summarized in parallel,
// then the per-exchange documents are collapsed in rounds until one
// document remains within budget.
type Summarizer struct {
	Oracle      domain.OracleClient
	CountTokens TokenCounter
	ChunkTokens int
	MaxRounds   int
}

// NewSummarizer constructs a Summarizer with its dependencies.
func NewSummarizer(o domain.OracleClient, count TokenCounter, chunkTokens, maxRounds int) *Summarizer {
	if chunkTokens <= 0 {
		chunkTokens = 3000
	}
	if maxRounds <= 0 {
		maxRounds = 10
	}
	return &Summarizer{Oracle: o, CountTokens: count, ChunkTokens: chunkTokens, MaxRounds: maxRounds}
}

// Summarize maps every turn to a per-exchange summary and reduces them
// to one document. It returns ErrSummaryBudget when the collapse stops
// shrinking or exceeds the round cap while still over budget.
func (s *Summarizer) Summarize(ctx domain.Context, turns []domain.TurnRecord) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}

	docs := make([]string, len(turns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summarizeConcurrency)
	for i, turn := range turns {
		g.Go(func() error {
			doc, err := s.Oracle.SummarizeExchange(gctx, turn.Question, turn.Response)
			if err != nil {
				return fmt.Errorf("op=summarize.exchange seq=%d: %w", turn.Seq, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return s.collapse(ctx, docs)
}

// collapse runs reduce rounds over the documents. Each round greedily
// packs documents into chunks within the token budget and reduces each
// chunk to one document.
func (s *Summarizer) collapse(ctx domain.Context, docs []string) (string, error) {
	rounds := 0
	for {
		if len(docs) == 1 && s.CountTokens(docs[0]) <= s.ChunkTokens {
			observability.SummaryRoundsHistogram.Observe(float64(rounds))
			return docs[0], nil
		}
		if rounds >= s.MaxRounds {
			return "", fmt.Errorf("op=summarize.collapse: %d rounds without fitting budget: %w", rounds, domain.ErrSummaryBudget)
		}
		rounds++

		before := s.totalTokens(docs)
		chunks := s.partition(docs)
		reduced := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			doc, err := s.Oracle.ReduceSummaries(ctx, chunk)
			if err != nil {
				return "", fmt.Errorf("op=summarize.reduce round=%d: %w", rounds, err)
			}
			reduced = append(reduced, doc)
		}
		docs = reduced

		// A round that fails to shrink the text while still over budget
		// would loop until the cap; bail out early instead.
		if s.totalTokens(docs) >= before && (len(docs) > 1 || s.CountTokens(docs[0]) > s.ChunkTokens) {
			return "", fmt.Errorf("op=summarize.collapse: round %d did not shrink: %w", rounds, domain.ErrSummaryBudget)
		}
	}
}

// partition groups documents greedily so each group stays within the
// chunk budget. A single document over budget forms its own group and
// goes through reduction alone.
func (s *Summarizer) partition(docs []string) [][]string {
	var groups [][]string
	var cur []string
	curTokens := 0
	for _, d := range docs {
		n := s.CountTokens(d)
		if len(cur) > 0 && curTokens+n > s.ChunkTokens {
			groups = append(groups, cur)
			cur = nil
			curTokens = 0
		}
		cur = append(cur, d)
		curTokens += n
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func (s *Summarizer) totalTokens(docs []string) int {
	return s.CountTokens(strings.Join(docs, "\n"))
}
