package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GroupStats summarizes one group's normalized ratios for a target.
type GroupStats struct {
	Mean float64
	SEM  float64
	N    int
}

// groupValues collects, per group, the defined normalized ratios of the
// given target at lane indices not excluded for that group. When a group
// carries several records for the same target name, the most recent one
// wins, matching how a re-measured blot supersedes its earlier run.
func groupValues(records []Record, exclusions *ExclusionSet, target string) map[string][]float64 {
	values := make(map[string][]float64)
	for _, r := range records {
		if r.Kind != Target || r.Name != target {
			continue
		}
		ratios := Ratios(records, r)
		vals := make([]float64, 0, len(ratios))
		for i, ratio := range ratios {
			if !ratio.Defined {
				continue
			}
			if exclusions != nil && exclusions.Excluded(r.Group, i) {
				continue
			}
			vals = append(vals, ratio.Value)
		}
		values[r.Group] = vals
	}
	return values
}

// GroupStatistics computes mean, SEM and N of the normalized ratios per
// group for the named target. SEM is the sample standard deviation over
// sqrt(N), reported as 0 when N < 2. Groups whose target has no matchable
// loading control report N = 0.
func GroupStatistics(records []Record, exclusions *ExclusionSet, target string) map[string]GroupStats {
	statistics := make(map[string]GroupStats)
	for group, vals := range groupValues(records, exclusions, target) {
		gs := GroupStats{N: len(vals)}
		if len(vals) > 0 {
			gs.Mean = stat.Mean(vals, nil)
		}
		if len(vals) > 1 {
			gs.SEM = stat.StdDev(vals, nil) / math.Sqrt(float64(len(vals)))
		}
		statistics[group] = gs
	}
	return statistics
}

// PercentChange computes the relative change of the Treatment mean against
// the Control mean for the named target, in percent. It is defined only
// when both canonical groups carry values and the control mean is non-zero.
func PercentChange(records []Record, exclusions *ExclusionSet, target string) (float64, bool) {
	values := groupValues(records, exclusions, target)
	control, treatment := values[GroupControl], values[GroupTreatment]
	if len(control) == 0 || len(treatment) == 0 {
		return 0, false
	}
	controlMean := stat.Mean(control, nil)
	if controlMean == 0 {
		return 0, false
	}
	treatmentMean := stat.Mean(treatment, nil)
	return (treatmentMean - controlMean) / controlMean * 100, true
}

// Significance runs Welch's unequal-variance t-test between the Control and
// Treatment ratio sets of the named target and returns the two-sided
// p-value. The test is omitted (ok = false) when either side has fewer than
// two values.
func Significance(records []Record, exclusions *ExclusionSet, target string) (float64, bool) {
	values := groupValues(records, exclusions, target)
	control, treatment := values[GroupControl], values[GroupTreatment]
	if len(control) < 2 || len(treatment) < 2 {
		return 0, false
	}
	return welchTTest(control, treatment), true
}

// welchTTest returns the two-sided p-value of Welch's t-test with the
// Welch-Satterthwaite degrees of freedom.
func welchTTest(a, b []float64) float64 {
	meanA, meanB := stat.Mean(a, nil), stat.Mean(b, nil)
	varA, varB := stat.Variance(a, nil), stat.Variance(b, nil)
	nA, nB := float64(len(a)), float64(len(b))

	seA, seB := varA/nA, varB/nB
	se2 := seA + seB
	if se2 == 0 {
		// Zero variance on both sides: the means are either identical or
		// separated with certainty.
		if meanA == meanB {
			return 1
		}
		return 0
	}

	t := (meanA - meanB) / math.Sqrt(se2)
	df := se2 * se2 / (seA*seA/(nA-1) + seB*seB/(nB-1))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}
