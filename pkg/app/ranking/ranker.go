package ranking

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/imagefetch"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type Config struct {
	// Workers bounds concurrent candidate scoring. 1 scores sequentially.
	Workers       int
	MaxTextLength int
}

// Ranker scores search results against a query vector in one modality.
type Ranker struct {
	embedder embedding.Embedder
	fetcher  imagefetch.Fetcher
	cfg      Config
	observer Observer
	logger   *logrus.Logger
}

func NewRanker(
	embedder embedding.Embedder,
	fetcher imagefetch.Fetcher,
	cfg Config,
	observer Observer,
	logger *logrus.Logger,
) *Ranker {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultMaxTextLength
	}
	if observer == nil {
		observer = NewTelemetryObserver(logger)
	}
	return &Ranker{
		embedder: embedder,
		fetcher:  fetcher,
		cfg:      cfg,
		observer: observer,
		logger:   logger,
	}
}

// Rank returns the candidates that could be scored, best first. Candidate
// failures only drop that candidate. A nil query yields an empty ranking for
// any mode; otherwise the one error is an invalid mode.
func (r *Ranker) Rank(
	ctx context.Context,
	query embedding.Vector,
	results []search.Result,
	mode search.Mode,
) ([]search.ScoredResult, error) {
	if len(query) == 0 {
		return []search.ScoredResult{}, nil
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", search.ErrInvalidMode, mode)
	}
	if len(results) == 0 {
		return []search.ScoredResult{}, nil
	}
	return Collect(r.Score(ctx, query, results, mode)), nil
}

// Score computes one Outcome per result, in input order.
func (r *Ranker) Score(
	ctx context.Context,
	query embedding.Vector,
	results []search.Result,
	mode search.Mode,
) []Outcome {
	outcomes := make([]Outcome, len(results))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i, result := range results {
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Index: i, Result: result, Err: err, Stage: StageCanceled}
			continue
		}
		i, result := i, result // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			outcomes[i] = r.scoreOne(ctx, i, result, query, mode)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		r.observer.Observe(mode, o)
	}
	return outcomes
}

func (r *Ranker) scoreOne(
	ctx context.Context,
	index int,
	result search.Result,
	query embedding.Vector,
	mode search.Mode,
) Outcome {
	outcome := Outcome{Index: index, Result: result}

	var (
		vector embedding.Vector
		err    error
	)
	switch mode {
	case search.ModeImage:
		if !result.HasImage() {
			outcome.Stage, outcome.Err = StageSkipped, ErrNoImage
			return outcome
		}
		data, fetchErr := r.fetcher.Fetch(ctx, result.ImageURL)
		if fetchErr != nil {
			outcome.Stage, outcome.Err = StageFetch, fetchErr
			return outcome
		}
		vector, err = r.embedder.EmbedImage(ctx, data)
	default:
		text := Truncate(TextRepresentation(result), r.cfg.MaxTextLength)
		vector, err = r.embedder.EmbedText(ctx, text)
	}
	if err != nil {
		outcome.Stage, outcome.Err = StageEmbed, err
		return outcome
	}

	score, err := embedding.CosineSimilarity(query, vector)
	if err != nil {
		outcome.Stage, outcome.Err = StageScore, err
		return outcome
	}
	outcome.Stage, outcome.Score = StageScored, score
	return outcome
}
