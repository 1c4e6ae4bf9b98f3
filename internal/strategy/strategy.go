// Package strategy maps image formats to the ordered tool invocations used
// to recompress them. Strategies are plain data: supporting a new format or
// reordering tool preference means editing the table, not the pipeline.
package strategy

import (
	"errors"

	"imgcrush/internal/toolchain"
	"imgcrush/pkg/imgutil"
)

var (
	// ErrUnsupportedFormat means no strategy exists for the format.
	ErrUnsupportedFormat = errors.New("format not handled")
	// ErrNoTool means a strategy exists but none of its tools are installed.
	ErrNoTool = errors.New("no compression tool available")
)

// Step is one candidate invocation: a capability and its argument template.
type Step struct {
	Tool toolchain.Name
	Args []string
}

// Stage holds candidate steps in priority order. At most one runs: the
// first whose tool is available.
type Stage struct {
	Name  string
	Steps []Step
}

// Strategy is the ordered list of stages applied to one scratch artifact.
type Strategy struct {
	Stages []Stage
}

// Table maps formats to strategies. Formats absent from the table are unsupported.
type Table map[imgutil.Kind]Strategy

// Resolved is a step chosen for a stage.
type Resolved struct {
	Stage string
	Step
}

// Plan is a strategy resolved against the available tools.
type Plan struct {
	Kind  imgutil.Kind
	Steps []Resolved
}

// DefaultTable returns the built-in strategies.
func DefaultTable() Table {
	return Table{
		imgutil.KindJPEG: {Stages: []Stage{
			{Name: "reencode", Steps: []Step{
				{Tool: toolchain.Mozjpeg, Args: []string{"-quality", toolchain.ArgQuality, "-optimize", "-progressive", "-outfile", toolchain.ArgOutput, toolchain.ArgInput}},
			}},
		}},
		imgutil.KindPNG: {Stages: []Stage{
			{Name: "quantize", Steps: []Step{
				{Tool: toolchain.Pngquant, Args: []string{"--quality=65-80", "--output", toolchain.ArgOutput, toolchain.ArgInput}},
			}},
			// Only the first available optimizer runs, even when both are installed.
			{Name: "optimize", Steps: []Step{
				{Tool: toolchain.Optipng, Args: []string{"-o2", "-quiet", toolchain.ArgInput}},
				{Tool: toolchain.Zopflipng, Args: []string{"-y", toolchain.ArgInput, toolchain.ArgInput}},
			}},
		}},
		imgutil.KindGIF: {Stages: []Stage{
			{Name: "optimize", Steps: []Step{
				{Tool: toolchain.Gifsicle, Args: []string{"-O3", "--batch", toolchain.ArgInput}},
			}},
		}},
	}
}

// Select resolves the strategy for kind against the available tools.
func (t Table) Select(kind imgutil.Kind, tools toolchain.Set) (Plan, error) {
	strat, ok := t[kind]
	if !ok {
		return Plan{}, ErrUnsupportedFormat
	}

	plan := Plan{Kind: kind}
	for _, stage := range strat.Stages {
		for _, step := range stage.Steps {
			if tools.Has(step.Tool) {
				plan.Steps = append(plan.Steps, Resolved{Stage: stage.Name, Step: step})
				break
			}
		}
	}
	if len(plan.Steps) == 0 {
		return plan, ErrNoTool
	}
	return plan, nil
}

// Supports reports whether the table has a strategy for kind.
func (t Table) Supports(kind imgutil.Kind) bool {
	_, ok := t[kind]
	return ok
}
