// Package report renders the analysis results: a Markdown narrative in the
// style used for dataset summaries, and an XLSX workbook with the tabular
// outputs.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MwillianM/FlchainExploration/internal/aggregate"
	"github.com/MwillianM/FlchainExploration/internal/regress"
)

// Meta identifies one run of the analysis.
type Meta struct {
	RunID       string
	Dataset     string
	Digest      string
	GeneratedAt time.Time
	Seed        int64
}

// Report gathers everything the Markdown rendering and workbook export need.
type Report struct {
	Meta Meta

	Rows    int
	Columns []string
	Head    [][]string

	Groups          []aggregate.GroupAggregate
	DeathBySex      []aggregate.CategoryRate
	DeathByRecruits []aggregate.CategoryRate
	DeathByMGUS     []aggregate.CategoryRate
	FLCByRatioRange []aggregate.CategoryMean
	Creatinine      aggregate.FloatSummary

	CorrKappaLambda float64
	CorrFit         float64

	Model *regress.Model
	Eval  *regress.Evaluation

	Charts []string
}

// Markdown renders the full report body. Apart from the [RUN] header the
// output is a pure function of the input dataset and seed, so reruns are
// byte-identical.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("[RUN]\n")
	fmt.Fprintf(&b, "ID: %s\n", r.Meta.RunID)
	fmt.Fprintf(&b, "Generated: %s\n", r.Meta.GeneratedAt.Format(time.RFC3339))
	b.WriteString("\n[DATASET SUMMARY]\n")
	fmt.Fprintf(&b, "File: %s (sha1 %s)\n", filepath.Base(r.Meta.Dataset), r.Meta.Digest)
	fmt.Fprintf(&b, "Rows: %d\n", r.Rows)
	fmt.Fprintf(&b, "Columns: %d\n", len(r.Columns))
	fmt.Fprintf(&b, "Seed: %d\n", r.Meta.Seed)

	if len(r.Head) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		writeTable(&b, r.Columns, r.Head)
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[GROUP AGGREGATE]\n")
		header := []string{"flc_group", "count", "flc_min", "flc_max", "flc_mean", "death_rate"}
		rows := make([][]string, len(r.Groups))
		for i, g := range r.Groups {
			rows[i] = []string{
				g.Group,
				fmt.Sprintf("%d", g.Count),
				fmt.Sprintf("%.3f", g.FLCMin),
				fmt.Sprintf("%.3f", g.FLCMax),
				fmt.Sprintf("%.3f", g.FLCMean),
				fmt.Sprintf("%.4f", g.DeathRate),
			}
		}
		writeTable(&b, header, rows)
		first, last := r.Groups[0], r.Groups[len(r.Groups)-1]
		fmt.Fprintf(&b, "Death rate climbs from %.1f%% in group %s to %.1f%% in group %s as the combined FLC level rises.\n",
			first.DeathRate*100, first.Group, last.DeathRate*100, last.Group)
	}

	writeRates := func(title string, rates []aggregate.CategoryRate) {
		if len(rates) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n[%s]\n", title)
		for _, c := range rates {
			fmt.Fprintf(&b, "- %s: %.1f%% dead (n=%d)\n", c.Level, c.Rate*100, c.Count)
		}
	}
	writeRates("DEATH RATE BY SEX", r.DeathBySex)
	writeRates("DEATH RATE BY RECRUITS", r.DeathByRecruits)
	writeRates("DEATH RATE BY MGUS", r.DeathByMGUS)

	if len(r.FLCByRatioRange) > 0 {
		b.WriteString("\n[MEAN FLC BY RATIO RANGE]\n")
		for _, c := range r.FLCByRatioRange {
			fmt.Fprintf(&b, "- %s: mean %.3f (n=%d)\n", c.Level, c.Mean, c.Count)
		}
	}

	if r.Creatinine.Count > 0 {
		b.WriteString("\n[CREATININE]\n")
		fmt.Fprintf(&b, "Present in %d rows (%d missing, excluded from all statistics).\n", r.Creatinine.Count, r.Creatinine.Missing)
		fmt.Fprintf(&b, "min %.3g, max %.3g, mean %.3g, std %.3g\n",
			r.Creatinine.Min, r.Creatinine.Max, r.Creatinine.Mean, r.Creatinine.Std)
	}

	b.WriteString("\n[CORRELATIONS]\n")
	fmt.Fprintf(&b, "- kappa ~ lambda: r=%.3f\n", r.CorrKappaLambda)
	fmt.Fprintf(&b, "- flc_mean ~ death_rate (by group): r=%.3f\n", r.CorrFit)

	if r.Model != nil {
		b.WriteString("\n[REGRESSION]\n")
		fmt.Fprintf(&b, "death_rate = %.6f + %.6f * flc_mean (n=%d groups)\n", r.Model.Alpha, r.Model.Beta, r.Model.N)
		fmt.Fprintf(&b, "R²: %.4f, residual std err: %.4f\n", r.Model.R2, r.Model.ResidualStdErr)
		fmt.Fprintf(&b, "The grouped mean FLC level explains %.2f%% of the variation in death rate.\n", r.Model.R2*100)
	}

	if r.Eval != nil {
		b.WriteString("\n[EVALUATION]\n")
		fmt.Fprintf(&b, "Sample: %d subjects drawn without replacement (seed %d).\n", r.Eval.SampleSize, r.Meta.Seed)
		fmt.Fprintf(&b, "Mean FLC in sample: %.3f\n", r.Eval.MeanFLC)
		fmt.Fprintf(&b, "Predicted death rate %.4f vs observed %.4f (difference %+.4f).\n",
			r.Eval.Predicted, r.Eval.Observed, r.Eval.Predicted-r.Eval.Observed)
	}

	if len(r.Charts) > 0 {
		b.WriteString("\n[CHARTS]\n")
		for _, c := range r.Charts {
			fmt.Fprintf(&b, "- %s\n", filepath.Base(c))
		}
	}
	return b.String()
}

// writeTable renders a Markdown table with a header row.
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		cells := make([]string, len(header))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}
