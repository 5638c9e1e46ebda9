// Agent configuration and enforcement policy constants.

package agent

import "math"

const (
	// DefaultMaxLoops is the safety limit on autonomous tool calls per user turn.
	DefaultMaxLoops = 50

	// MinFullDocReads is the floor of full-document reads required before an
	// answer is accepted.
	MinFullDocReads = 3

	// ReadEnforcementRounds caps how many times the mandatory-read gate may
	// re-prompt the model within one turn.
	ReadEnforcementRounds = 2

	// DeepSweepCountThreshold is the match count above which a result set is
	// treated as high-volume.
	DeepSweepCountThreshold = 20

	// DeepSweepLimitMin is the minimum search limit expected when sweeping a
	// high-volume result set.
	DeepSweepLimitMin = 100

	// DeepSweepTargetFraction of the observed total sets the recommended
	// batch-read size, clamped to [DeepSweepMinBatchDocs, DeepSweepMaxBatchDocs].
	DeepSweepTargetFraction = 0.30
	DeepSweepMinBatchDocs   = 50
	DeepSweepMaxBatchDocs   = 200

	// DeepSweepRetries caps how many times the sweep gate may re-prompt.
	DeepSweepRetries = 2

	// MaxQuoteFailures is the quote-verification attempt at which the turn
	// aborts with an unverified draft.
	MaxQuoteFailures = 3
)

// Config holds per-agent settings.
type Config struct {
	// MaxLoops bounds autonomous tool calls per user turn.
	MaxLoops int

	// SystemPrompt guides the model's investigation behavior.
	SystemPrompt string
}

// DefaultConfig returns the standard investigation configuration.
func DefaultConfig() Config {
	return Config{
		MaxLoops:     DefaultMaxLoops,
		SystemPrompt: SystemInstruction(),
	}
}

// RecommendedSweepTarget computes the batch-read size expected for a
// high-volume result set: 30% of the observed total, clamped to [50, 200].
func RecommendedSweepTarget(totalDocs int) int {
	if totalDocs <= 0 {
		return DeepSweepMinBatchDocs
	}
	target := int(math.Ceil(float64(totalDocs) * DeepSweepTargetFraction))
	if target < DeepSweepMinBatchDocs {
		target = DeepSweepMinBatchDocs
	}
	if target > DeepSweepMaxBatchDocs {
		target = DeepSweepMaxBatchDocs
	}
	return target
}
