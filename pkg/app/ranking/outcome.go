package ranking

import (
	"errors"
	"sort"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
)

// Stage names where a candidate's scoring ended.
type Stage string

const (
	StageScored   Stage = "scored"
	StageSkipped  Stage = "skipped"
	StageFetch    Stage = "fetch"
	StageEmbed    Stage = "embed"
	StageScore    Stage = "score"
	StageCanceled Stage = "canceled"
)

var ErrNoImage = errors.New("result has no image")

// Outcome is the result of scoring one candidate. Err is nil only when Stage is StageScored.
type Outcome struct {
	Index  int
	Result search.Result
	Score  float64
	Err    error
	Stage  Stage
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Stage == StageScored
}

// Collect keeps the scored outcomes and orders them by descending score.
// Ties keep their input order.
func Collect(outcomes []Outcome) []search.ScoredResult {
	scored := make([]search.ScoredResult, 0, len(outcomes))
	ordered := make([]Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			ordered = append(ordered, o)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	for _, o := range ordered {
		scored = append(scored, search.ScoredResult{Result: o.Result, Score: o.Score})
	}
	return scored
}
