package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/retort/network"
)

// NetworkSnapshot is the golden-file form of a finished scenario: the
// stable run summary plus the canonical network export. The run token is
// deliberately excluded; it is unique per run.
type NetworkSnapshot struct {
	Scenario   string           `json:"scenario"`
	StopReason string           `json:"stop_reason"`
	Rounds     int              `json:"rounds"`
	Committed  int              `json:"committed"`
	Network    network.Snapshot `json:"network"`
}

// RunWithGolden executes a scenario and compares the final network
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./harness -update
//
// Returns error if scenario execution fails; a snapshot mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := NetworkSnapshot{
		Scenario:   scenario.Name,
		StopReason: result.Report.StopReason,
		Rounds:     result.Report.Rounds,
		Committed:  result.Report.Committed,
		Network:    result.Network.Snapshot(),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
