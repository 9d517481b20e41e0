// Package regress fits the illustrative ordinary least squares model
// death_rate = β0 + β1·flc_mean over the group-aggregate table and checks it
// against a seeded random sample of subject rows.
package regress

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/MwillianM/FlchainExploration/internal/aggregate"
	"github.com/MwillianM/FlchainExploration/internal/dataset"
	"github.com/MwillianM/FlchainExploration/internal/transform"
)

// DegenerateError reports a regression attempted on too few groups to
// identify two coefficients.
type DegenerateError struct {
	Groups int
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("regression needs at least 2 groups, got %d", e.Groups)
}

// Model holds the fitted coefficients and fit diagnostics.
type Model struct {
	Alpha          float64 // intercept β0
	Beta           float64 // slope β1 on mean FLC
	R2             float64
	ResidualStdErr float64
	N              int
}

// Fit estimates the model over the full group-aggregate table. The table is
// the entire training set; with ~10 groups there is nothing to hold out.
func Fit(groups []aggregate.GroupAggregate) (*Model, error) {
	if len(groups) < 2 {
		return nil, &DegenerateError{Groups: len(groups)}
	}
	xs := make([]float64, len(groups))
	ys := make([]float64, len(groups))
	for i, g := range groups {
		xs[i] = g.FLCMean
		ys[i] = g.DeathRate
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return nil, fmt.Errorf("regression produced undefined coefficients (no variance in mean FLC across %d groups)", len(groups))
	}

	est := make([]float64, len(xs))
	var ssr float64
	for i, x := range xs {
		est[i] = alpha + beta*x
		r := ys[i] - est[i]
		ssr += r * r
	}
	m := &Model{Alpha: alpha, Beta: beta, R2: stat.RSquaredFrom(est, ys, nil), N: len(groups)}
	if len(groups) > 2 {
		m.ResidualStdErr = math.Sqrt(ssr / float64(len(groups)-2))
	}
	return m, nil
}

// Predict evaluates the fitted line at a mean FLC value.
func (m *Model) Predict(flcMean float64) float64 {
	return m.Alpha + m.Beta*flcMean
}

// Evaluation is a predicted-vs-observed comparison on one random sample of
// subject rows. Illustrative model validation, not a train/test split.
type Evaluation struct {
	SampleSize int
	MeanFLC    float64
	Observed   float64 // death fraction in the sample
	Predicted  float64 // model prediction at the sample's mean FLC
}

// Evaluate draws a uniform sample without replacement from the transformed
// table and compares the model's prediction at the sample's mean FLC with
// the death fraction actually observed in the sample. rng must be
// deterministically seeded by the caller; global random state is never used.
func Evaluate(m *Model, t *dataset.Table, size int, rng *rand.Rand) (*Evaluation, error) {
	if size <= 0 {
		return nil, fmt.Errorf("evaluation sample size must be positive, got %d", size)
	}
	n := t.NumRows()
	if size > n {
		size = n
	}
	flc, err := t.Float(transform.ColFLC)
	if err != nil {
		return nil, err
	}
	death, err := t.Factor(dataset.ColDeath)
	if err != nil {
		return nil, err
	}

	idx := rng.Perm(n)[:size]
	var sum float64
	var dead int
	for _, i := range idx {
		v, ok := flc.At(i)
		if !ok {
			return nil, &dataset.ValueError{Column: transform.ColFLC, Row: i, Reason: "missing value"}
		}
		sum += v
		if death.At(i) == transform.DeathLevels[1] {
			dead++
		}
	}
	mean := sum / float64(size)
	return &Evaluation{
		SampleSize: size,
		MeanFLC:    mean,
		Observed:   float64(dead) / float64(size),
		Predicted:  m.Predict(mean),
	}, nil
}
