package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/retort/netdef"
	"github.com/roach88/retort/network"
	"github.com/roach88/retort/plan"
	"github.com/roach88/retort/rewrite"
	"github.com/roach88/retort/strategy"
)

// Result bundles the final network and the run report.
type Result struct {
	Network *network.Network
	Report  *strategy.Report
}

// Run compiles the scenario's network definition, expands it with the
// Cartesian strategy and the generation pipeline, and validates the
// expected summary. The worker count is forced to one so replays are
// deterministic regardless of what the definition's limits say.
func Run(scenario *Scenario) (*Result, error) {
	src, err := os.ReadFile(scenario.Definition)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := netdef.CompileSource(string(src))
	if err != nil {
		return nil, fmt.Errorf("compile definition: %w", err)
	}

	net := network.New()
	if err := def.Seed(net); err != nil {
		return nil, fmt.Errorf("seed network: %w", err)
	}
	opts, err := def.Options(net)
	if err != nil {
		return nil, err
	}
	opts = append(opts, strategy.WithWorkers(1))

	exp := strategy.Cartesian(net, rewrite.Transform{},
		plan.New(plan.Calc(plan.GenerationCalculator{})), def.Limits.NumIter, opts...)
	rep, err := exp.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("expansion: %w", err)
	}

	result := &Result{Network: net, Report: rep}
	if err := checkExpect(scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// checkExpect validates the run summary against the scenario's
// expectations. Zero-valued expectations are skipped.
func checkExpect(scenario *Scenario, result *Result) error {
	want := scenario.Expect
	checks := []struct {
		name string
		want int
		got  int
	}{
		{"molecules", want.Molecules, result.Network.MoleculeCount()},
		{"reactions", want.Reactions, result.Network.ReactionCount()},
		{"rounds", want.Rounds, result.Report.Rounds},
		{"committed", want.Committed, result.Report.Committed},
		{"rejected", want.Rejected, result.Report.Rejected},
	}
	for _, c := range checks {
		if c.want != 0 && c.want != c.got {
			return fmt.Errorf("scenario %q: expected %d %s, got %d", scenario.Name, c.want, c.name, c.got)
		}
	}
	if want.StopReason != "" && want.StopReason != result.Report.StopReason {
		return fmt.Errorf("scenario %q: expected stop reason %q, got %q",
			scenario.Name, want.StopReason, result.Report.StopReason)
	}
	return nil
}
