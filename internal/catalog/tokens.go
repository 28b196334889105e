package catalog

// tokenCharRatio is the fixed chars-per-token approximation used for all
// token estimates. A sizing proxy, not a tokenizer.
const tokenCharRatio = 4

// EstimateTokens approximates the token cost of a payload, rounding up.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return (len(s) + tokenCharRatio - 1) / tokenCharRatio
}
