package analysis

import (
	"math"
	"testing"
)

// buildSession appends a control/target pair per group so that the target
// ratios come out to exactly the given values.
func buildSession(t *testing.T, control, treatment []float64) *History {
	t.Helper()
	h := NewHistory()

	ones := func(n int) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = 1
		}
		return v
	}

	h.Append(Spec{Kind: LoadingControl, Group: GroupControl, Name: "Actin", StartLane: 1, Intensities: ones(len(control))})
	h.Append(Spec{Kind: Target, Group: GroupControl, Name: "pAKT", StartLane: 1, Intensities: control})
	h.Append(Spec{Kind: LoadingControl, Group: GroupTreatment, Name: "Actin", StartLane: 1, Intensities: ones(len(treatment))})
	h.Append(Spec{Kind: Target, Group: GroupTreatment, Name: "pAKT", StartLane: 1, Intensities: treatment})
	return h
}

func TestGroupStatistics(t *testing.T) {
	h := buildSession(t, []float64{1, 2, 3}, []float64{2, 4})

	stats := GroupStatistics(h.Records(), NewExclusionSet(), "pAKT")

	control, ok := stats[GroupControl]
	if !ok {
		t.Fatal("missing Control stats")
	}
	if control.N != 3 {
		t.Errorf("Control N: got %d, want 3", control.N)
	}
	if math.Abs(control.Mean-2) > 1e-12 {
		t.Errorf("Control mean: got %.6f, want 2", control.Mean)
	}
	// Sample stddev of {1,2,3} is 1, SEM = 1/sqrt(3).
	if math.Abs(control.SEM-1/math.Sqrt(3)) > 1e-12 {
		t.Errorf("Control SEM: got %.6f, want %.6f", control.SEM, 1/math.Sqrt(3))
	}

	treatment := stats[GroupTreatment]
	if treatment.N != 2 || math.Abs(treatment.Mean-3) > 1e-12 {
		t.Errorf("Treatment stats: %+v", treatment)
	}
}

func TestGroupStatisticsSingleValueSEM(t *testing.T) {
	h := buildSession(t, []float64{2}, []float64{3})

	stats := GroupStatistics(h.Records(), NewExclusionSet(), "pAKT")
	if stats[GroupControl].SEM != 0 {
		t.Errorf("SEM with N=1: got %.6f, want 0", stats[GroupControl].SEM)
	}
}

func TestGroupStatisticsExclusionLaw(t *testing.T) {
	h := buildSession(t, []float64{1, 2, 100}, []float64{2, 4})

	ex := NewExclusionSet()
	ex.Toggle(GroupControl, 2)

	stats := GroupStatistics(h.Records(), ex, "pAKT")
	control := stats[GroupControl]
	if control.N != 2 {
		t.Errorf("excluded lane still counted: N=%d", control.N)
	}
	if math.Abs(control.Mean-1.5) > 1e-12 {
		t.Errorf("excluded value leaked into mean: %.6f", control.Mean)
	}

	// Toggling back restores the lane.
	ex.Toggle(GroupControl, 2)
	if got := GroupStatistics(h.Records(), ex, "pAKT")[GroupControl].N; got != 3 {
		t.Errorf("after re-include: N=%d, want 3", got)
	}
}

func TestGroupStatisticsUndefinedRatiosSkipped(t *testing.T) {
	h := NewHistory()
	h.Append(Spec{Kind: LoadingControl, Group: GroupControl, Name: "Actin", StartLane: 1,
		Intensities: []float64{1, 0, 1}})
	h.Append(Spec{Kind: Target, Group: GroupControl, Name: "pAKT", StartLane: 1,
		Intensities: []float64{2, 5, 0}})

	stats := GroupStatistics(h.Records(), NewExclusionSet(), "pAKT")
	if got := stats[GroupControl].N; got != 1 {
		t.Errorf("undefined ratios must not count: N=%d, want 1", got)
	}
}

func TestPercentChange(t *testing.T) {
	h := buildSession(t, []float64{2, 2}, []float64{3, 3})

	change, ok := PercentChange(h.Records(), NewExclusionSet(), "pAKT")
	if !ok {
		t.Fatal("percent change should be defined")
	}
	if math.Abs(change-50) > 1e-9 {
		t.Errorf("percent change: got %.4f, want +50", change)
	}
}

func TestPercentChangeUndefined(t *testing.T) {
	h := NewHistory()
	h.Append(Spec{Kind: LoadingControl, Group: GroupTreatment, Name: "Actin", StartLane: 1, Intensities: []float64{1}})
	h.Append(Spec{Kind: Target, Group: GroupTreatment, Name: "pAKT", StartLane: 1, Intensities: []float64{2}})

	if _, ok := PercentChange(h.Records(), NewExclusionSet(), "pAKT"); ok {
		t.Error("percent change without a Control group should be undefined")
	}
}

func TestSignificanceWelch(t *testing.T) {
	// scipy.stats.ttest_ind([1,2,3,4,5], [2,3,4,5,6], equal_var=False)
	// gives p ~= 0.34659.
	h := buildSession(t, []float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6})

	p, ok := Significance(h.Records(), NewExclusionSet(), "pAKT")
	if !ok {
		t.Fatal("significance should be computed")
	}
	if math.Abs(p-0.34659) > 1e-3 {
		t.Errorf("Welch p-value: got %.5f, want ~0.34659", p)
	}
}

func TestSignificanceIdenticalGroups(t *testing.T) {
	h := buildSession(t, []float64{1, 2, 3}, []float64{1, 2, 3})

	p, ok := Significance(h.Records(), NewExclusionSet(), "pAKT")
	if !ok {
		t.Fatal("significance should be computed")
	}
	if math.Abs(p-1) > 1e-9 {
		t.Errorf("identical groups: p=%.6f, want 1", p)
	}
}

func TestSignificanceInsufficientSamples(t *testing.T) {
	h := buildSession(t, []float64{1}, []float64{2, 3})

	if _, ok := Significance(h.Records(), NewExclusionSet(), "pAKT"); ok {
		t.Error("N<2 on one side must omit the test")
	}
}

func TestWelchTTestZeroVariance(t *testing.T) {
	if p := welchTTest([]float64{2, 2}, []float64{2, 2}); p != 1 {
		t.Errorf("equal constant samples: p=%.4f, want 1", p)
	}
	if p := welchTTest([]float64{1, 1}, []float64{2, 2}); p != 0 {
		t.Errorf("separated constant samples: p=%.4f, want 0", p)
	}
}
