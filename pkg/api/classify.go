package api

// Classification labels shown to the user. A document with no score yet
// (still pending, or AI analysis not requested) classifies as "N/A".
const (
	LabelLikelyAI    = "Likely AI"
	LabelLikelyHuman = "Likely Human"
	LabelNotScored   = "N/A"
)

// Classification is derived at consumption time and never stored.
type Classification struct {
	IsAI  *bool
	Label string
}

// Classify turns a raw provider score and a requester-chosen threshold into a
// discrete label. A score exactly at the threshold counts as AI; the same
// comparison is used by the server's direct detection endpoint so both sides
// agree on boundary values.
func Classify(score *float64, threshold float64) Classification {
	if score == nil {
		return Classification{Label: LabelNotScored}
	}
	isAI := *score >= threshold
	label := LabelLikelyHuman
	if isAI {
		label = LabelLikelyAI
	}
	return Classification{IsAI: &isAI, Label: label}
}
