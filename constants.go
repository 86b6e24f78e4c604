package zkagg

const (
	AGGREGATE_PROOF_DOMAIN_TAG    = "zkagg_aggregate_opening_proof"
	BLINDING_GENERATOR_DOMAIN_TAG = "zkagg_blinding_generator_hash_to_point"

	// Fixed-point quantization policy for float64 gradients. Every
	// gradient is snapped to a grid of 1/SCALE_FACTOR before it enters
	// the field; encoding rejects values off the grid by more than
	// QUANTIZATION_TOLERANCE instead of silently dropping digits.
	SCALE_FACTOR           = 1_000_000 // precision = 6
	MAX_GRADIENT_MAGNITUDE = 1_000_000_000
	QUANTIZATION_TOLERANCE = 1e-9

	PROOF_VERSION = 1
	// version || C || A || z_v || z_r || claimed sum
	PROOF_LEN = 1 + 4*32 + 32
)
