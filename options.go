package qcircuit

// Options control how the working tensor is truncated when it is
// factored. The zero maxDim means no bond dimension limit.
type Options struct {
	cutoff float64
	maxDim int
}

// NewOptions returns the default truncation options.
func NewOptions() Options {
	opt := Options{}
	opt.cutoff = 1e-8
	opt.maxDim = 0
	return opt
}

// Cutoff sets the relative truncation error of the squared spectrum.
func (opt Options) Cutoff(c float64) Options {
	opt.cutoff = c
	return opt
}

// MaxDim sets the maximum kept bond dimension, 0 for unlimited.
func (opt Options) MaxDim(d int) Options {
	opt.maxDim = d
	return opt
}
