package moderation

// confidenceThreshold returns the minimum per-detection confidence counted at
// a sensitivity tier. Low sensitivity is near-exact only.
func confidenceThreshold(s Sensitivity) float64 {
	switch s {
	case SensitivityLow:
		return 0.98
	case SensitivityHigh:
		return 0.70
	default:
		return 0.85
	}
}

// shouldFlag decides whether a detection set violates policy at the given
// sensitivity tier.
func shouldFlag(s Sensitivity, maxSeverity Severity, detections []Detection) bool {
	if len(detections) == 0 {
		return false
	}
	switch s {
	case SensitivityLow:
		if maxSeverity != SeverityHigh {
			return false
		}
		for _, d := range detections {
			if d.Confidence >= 0.95 {
				return true
			}
		}
		return false
	case SensitivityHigh:
		return true
	default:
		if maxSeverity == SeverityHigh {
			return true
		}
		if maxSeverity == SeverityMedium {
			for _, d := range detections {
				if d.Confidence >= 0.85 && d.Confidence < 0.95 {
					return true
				}
			}
		}
		return false
	}
}

// recommendAction derives the remedial action from severity and the number of
// distinct detected words. Callers may honor it or apply their configured
// action instead.
func recommendAction(maxSeverity Severity, detectionCount int) Action {
	switch maxSeverity {
	case SeverityHigh:
		if detectionCount > 2 {
			return ActionKick
		}
		return ActionTimeout
	case SeverityMedium:
		if detectionCount > 3 {
			return ActionTimeout
		}
		return ActionDelete
	default:
		return ActionWarn
	}
}

// accumulateConfidence folds per-detection confidences into one capped score.
// The strongest hit counts in full, further hits contribute half.
func accumulateConfidence(detections []Detection) float64 {
	total := 0.0
	for i, d := range detections {
		if i == 0 {
			total = d.Confidence
			continue
		}
		total += d.Confidence * 0.5
	}
	if total > 1 {
		total = 1
	}
	return total
}
