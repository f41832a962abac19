package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sw33tLie/groupgen/pkg/group"
)

// Frequency tags how often a generator is meant to run.
type Frequency string

const (
	FrequencyOnce   Frequency = "once"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency accepts "once", "daily" or "weekly" in any case.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return f, nil
	default:
		return "", fmt.Errorf("unknown generation frequency %q", s)
	}
}

// GenerationContext is built fresh for every generator invocation.
type GenerationContext struct {
	Timestamp int64
}

// Generator produces zero or more groups. It may read previously stored
// groups, typically those written by the generators it depends on.
type Generator interface {
	Generate(ctx context.Context, genCtx GenerationContext, groups group.Reader) ([]group.GroupWithData, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, genCtx GenerationContext, groups group.Reader) ([]group.GroupWithData, error)

func (f Func) Generate(ctx context.Context, genCtx GenerationContext, groups group.Reader) ([]group.GroupWithData, error) {
	return f(ctx, genCtx, groups)
}

// Definition describes a generator registered in a Library.
type Definition struct {
	Name      string
	DependsOn []string
	Frequency Frequency
	Generator Generator
}
