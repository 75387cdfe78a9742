package airquality

// Concentration thresholds in ppm. Each is the inclusive lower bound of its label.
const (
	ThresholdModerate  = 500.0
	ThresholdPoor      = 1000.0
	ThresholdDangerous = 2000.0
)

// Classify maps a ppm concentration to a Quality label. A nil ppm is Unknown.
func Classify(ppm *float64) Quality {
	if ppm == nil {
		return QualityUnknown
	}
	return ClassifyValue(*ppm)
}

// ClassifyValue is Classify for a known concentration.
func ClassifyValue(ppm float64) Quality {
	switch {
	case ppm < ThresholdModerate:
		return QualityGood
	case ppm < ThresholdPoor:
		return QualityModerate
	case ppm < ThresholdDangerous:
		return QualityPoor
	default:
		return QualityDangerous
	}
}

// IsAlert reports whether ppm reaches the Dangerous threshold.
func IsAlert(ppm *float64) bool {
	return ppm != nil && *ppm >= ThresholdDangerous
}
