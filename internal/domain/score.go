package domain

// ─── Value Score ────────────────────────────────────────────────────────────

// Sub-score ceilings. The five sub-scores sum to at most 100.
const (
	MaxRisk      = 30
	MaxReadiness = 25
	MaxNovelty   = 20
	MaxImpact    = 15
	MaxTrust     = 10

	// PassThreshold is the minimum total a candidate needs to ever be sent.
	PassThreshold = 65
)

// ValueScore is the 5-component 0–100 metric gating a candidate.
// Immutable value object: recomputed fresh per evaluation, never mutated.
type ValueScore struct {
	Risk      int    `json:"risk"`      // [0,30] — streak about to lapse
	Readiness int    `json:"readiness"` // [0,25] — likely engagement at this hour
	Novelty   int    `json:"novelty"`   // [0,20] — category rotation freshness
	Impact    int    `json:"impact"`    // [0,15] — estimated behavior change
	Trust     int    `json:"trust"`     // [0,10] — relationship/opt-in level
	Reason    string `json:"reason"`    // free text, for auditability
}

// Total is the sum of the five sub-scores, clamped to [0,100].
func (v ValueScore) Total() int {
	total := v.Risk + v.Readiness + v.Novelty + v.Impact + v.Trust
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// Passes reports whether the total clears the send threshold.
// Derived, never separately settable: 64 fails, 65 passes.
func (v ValueScore) Passes() bool {
	return v.Total() >= PassThreshold
}
