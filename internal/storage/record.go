package storage

import (
	"github.com/vovakirdan/turnsim/internal/config"
	"github.com/vovakirdan/turnsim/internal/sim"
)

// NewRunRecord converts a finished scheduler run into a record ready for
// SaveRun. The scenario is stored with the run so it can be replayed
// without the file it was loaded from.
func NewRunRecord(sc config.Scenario, res sim.Result) (RunRecord, error) {
	doc, err := sc.Marshal()
	if err != nil {
		return RunRecord{}, err
	}
	return RunRecord{
		ScenarioID: sc.ID,
		Frames:     res.Frames,
		FinalPhase: res.Final.Phase.String(),
		Energies:   res.Final.Energies(),
		Digest:     res.Digest,
		Trace:      sim.Text(res.Events),
		Scenario:   string(doc),
		RosterKey:  sc.Fingerprint(),
	}, nil
}

// Diverged reports whether r's digest differs from an earlier recording
// of the same scenario, frame budget and roster. The earlier digests are
// returned for logging.
func (s *Store) Diverged(r RunRecord) (bool, []string, error) {
	digests, err := s.Digests(r.ScenarioID, r.Frames, r.RosterKey)
	if err != nil {
		return false, nil, err
	}
	for _, d := range digests {
		if d != r.Digest {
			return true, digests, nil
		}
	}
	return false, digests, nil
}

// ScenarioConfig decodes the scenario stored with the run. Runs saved
// before scenarios were stored report ok false.
func (r RunRecord) ScenarioConfig() (sc config.Scenario, ok bool, err error) {
	if r.Scenario == "" {
		return config.Scenario{}, false, nil
	}
	sc, err = config.Parse([]byte(r.Scenario))
	if err != nil {
		return config.Scenario{}, true, err
	}
	return sc, true, nil
}
