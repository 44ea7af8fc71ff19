package moderation

import "testing"

func TestThresholdMonotonicity(t *testing.T) {
	detectionSets := [][]Detection{
		{{Word: "a", Severity: SeverityHigh, Confidence: 1.0}},
		{{Word: "a", Severity: SeverityHigh, Confidence: 0.9}},
		{{Word: "a", Severity: SeverityMedium, Confidence: 0.9}},
		{{Word: "a", Severity: SeverityMedium, Confidence: 1.0}},
		{{Word: "a", Severity: SeverityLow, Confidence: 1.0}},
		{
			{Word: "a", Severity: SeverityHigh, Confidence: 0.96},
			{Word: "b", Severity: SeverityMedium, Confidence: 0.88},
		},
	}

	for i, detections := range detectionSets {
		maxSeverity := SeverityLow
		for _, d := range detections {
			if d.Severity.rank() > maxSeverity.rank() {
				maxSeverity = d.Severity
			}
		}
		low := shouldFlag(SensitivityLow, maxSeverity, detections)
		medium := shouldFlag(SensitivityMedium, maxSeverity, detections)
		high := shouldFlag(SensitivityHigh, maxSeverity, detections)
		if low && !medium {
			t.Fatalf("set %d: low flags but medium does not", i)
		}
		if medium && !high {
			t.Fatalf("set %d: medium flags but high does not", i)
		}
	}
}

func TestConfidenceThresholds(t *testing.T) {
	if got := confidenceThreshold(SensitivityLow); got != 0.98 {
		t.Fatalf("low threshold: got %f", got)
	}
	if got := confidenceThreshold(SensitivityMedium); got != 0.85 {
		t.Fatalf("medium threshold: got %f", got)
	}
	if got := confidenceThreshold(SensitivityHigh); got != 0.70 {
		t.Fatalf("high threshold: got %f", got)
	}
}

func TestRecommendAction(t *testing.T) {
	cases := []struct {
		severity Severity
		count    int
		want     Action
	}{
		{SeverityHigh, 1, ActionTimeout},
		{SeverityHigh, 3, ActionKick},
		{SeverityMedium, 2, ActionDelete},
		{SeverityMedium, 4, ActionTimeout},
		{SeverityLow, 5, ActionWarn},
	}
	for _, tc := range cases {
		if got := recommendAction(tc.severity, tc.count); got != tc.want {
			t.Fatalf("recommendAction(%s, %d) = %s, want %s", tc.severity, tc.count, got, tc.want)
		}
	}
}

func TestMediumSensitivityMediumSeverityBand(t *testing.T) {
	band := []Detection{{Word: "a", Severity: SeverityMedium, Confidence: 0.9}}
	if !shouldFlag(SensitivityMedium, SeverityMedium, band) {
		t.Fatalf("expected flag for medium severity in [0.85,0.95)")
	}
	exact := []Detection{{Word: "a", Severity: SeverityMedium, Confidence: 1.0}}
	if shouldFlag(SensitivityMedium, SeverityMedium, exact) {
		t.Fatalf("medium tier flags medium severity only inside the confidence band")
	}
}

func TestAccumulateConfidenceCapped(t *testing.T) {
	detections := []Detection{
		{Confidence: 1.0},
		{Confidence: 0.9},
		{Confidence: 0.9},
	}
	if got := accumulateConfidence(detections); got != 1.0 {
		t.Fatalf("expected cap at 1.0, got %f", got)
	}
	single := []Detection{{Confidence: 0.9}}
	if got := accumulateConfidence(single); got != 0.9 {
		t.Fatalf("expected 0.9, got %f", got)
	}
}
