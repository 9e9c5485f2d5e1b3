package analytics

import "ventas/internal/core"

// DeltaPct is the signed percentage change from prior to current. It is not
// applicable when prior is missing or zero.
func DeltaPct(current float64, prior core.Optional) core.Optional {
	p, ok := prior.Get()
	if !ok || p == 0 {
		return core.NotApplicable()
	}
	return core.Some((current - p) / p * 100)
}

// DeltaOf is DeltaPct for a current value that may itself be missing.
func DeltaOf(current, prior core.Optional) core.Optional {
	c, ok := current.Get()
	if !ok {
		return core.NotApplicable()
	}
	return DeltaPct(c, prior)
}
