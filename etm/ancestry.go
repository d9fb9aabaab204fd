package etm

import "math"

// circularPhaseDiff returns the distance between two phases on the unit
// circle, always in [0, 0.5].
func circularPhaseDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 1.0)
	return math.Min(d, 1.0-d)
}

// ancestryMismatch counts per-character differences between two ancestry
// strings, plus a penalty of one per character of length difference.
func ancestryMismatch(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	mismatch := 0
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			mismatch++
		}
	}
	if len(ra) != len(rb) {
		diff := len(ra) - len(rb)
		if diff < 0 {
			diff = -diff
		}
		mismatch += diff
	}
	return mismatch
}

// smoothMismatch remaps a raw mismatch count of 3 or 4 down to 2. The remap
// is a calibration carried over from the validated trials, not a principled
// rule; keep it as-is.
func smoothMismatch(mismatch int) int {
	if mismatch == 3 || mismatch == 4 {
		return 2
	}
	return mismatch
}

// ancestryMatch applies the ancestry component of return eligibility: exact
// equality, or, once smoothing is active, a smoothed mismatch count compared
// against the configured threshold.
func (e *Engine) ancestryMatch(identityAncestry, recruiterAncestry string) bool {
	if !e.Config.AncestryRequired {
		return true
	}
	if e.Config.SmoothingEnabled && e.Tick >= e.Config.SmoothingTick {
		effective := smoothMismatch(ancestryMismatch(identityAncestry, recruiterAncestry))
		return effective <= e.Config.SmoothingThreshold
	}
	return identityAncestry == recruiterAncestry
}
