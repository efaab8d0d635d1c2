package service

import "docvision/internal/domain"

// OptionDefaults fills generation knobs a request left unset.
type OptionDefaults struct {
	MaxTokens   int
	Temperature float64
}

// Apply returns opts with zero-valued generation settings replaced.
func (d OptionDefaults) Apply(opts domain.TaskOptions) domain.TaskOptions {
	if opts.MaxTokens <= 0 && d.MaxTokens > 0 {
		opts.MaxTokens = d.MaxTokens
	}
	if opts.Temperature == nil {
		t := d.Temperature
		opts.Temperature = &t
	}
	return opts
}
