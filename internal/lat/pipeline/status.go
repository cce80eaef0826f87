package pipeline

import (
	"strings"

	"github.com/banshee-data/latfilter/internal/config"
	"github.com/banshee-data/latfilter/internal/lat/l3veto"
)

// Status is the tracker part of the filter decision.
type Status uint32

const (
	StatusAcdTop Status = 1 << iota
	StatusAcdSideRow01
	StatusAcdSideRow2
	StatusSkirt
	StatusNoTracks
	StatusOneTrack
	StatusMultiTrack
)

// vetoes are the statuses that reject an event.
const vetoes = StatusAcdTop | StatusAcdSideRow01 | StatusAcdSideRow2 | StatusSkirt | StatusNoTracks

var statusNames = []struct {
	s    Status
	name string
}{
	{StatusAcdTop, "acd-top"},
	{StatusAcdSideRow01, "acd-row01"},
	{StatusAcdSideRow2, "acd-row2"},
	{StatusSkirt, "skirt"},
	{StatusNoTracks, "no-tracks"},
	{StatusOneTrack, "one-track"},
	{StatusMultiTrack, "multi-track"},
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range statusNames {
		if s&n.s != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := s &^ (vetoes | StatusOneTrack | StatusMultiTrack); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// Vetoed reports whether s rejects the event.
func (s Status) Vetoed() bool {
	return s&vetoes != 0
}

// Statuses lists every single-bit status in bit order.
func Statuses() []Status {
	out := make([]Status, len(statusNames))
	for i, n := range statusNames {
		out[i] = n.s
	}
	return out
}

// Thresholds are the energy cuts applied by Classify, in MeV.
type Thresholds struct {
	AcdTopEnergyMaxMeV   int
	AcdRow01EnergyMaxMeV int
	AcdRow2EnergyMaxMeV  int
	NoTrackEnergyMinMeV  int
	SkirtEnergyMaxMeV    int
}

// DefaultThresholds returns the flight cuts.
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.EmptyTuningConfig())
}

// ThresholdsFromConfig reads the cuts from a tuning config.
func ThresholdsFromConfig(cfg *config.TuningConfig) Thresholds {
	return Thresholds{
		AcdTopEnergyMaxMeV:   cfg.GetAcdTopEnergyMaxMeV(),
		AcdRow01EnergyMaxMeV: cfg.GetAcdRow01EnergyMaxMeV(),
		AcdRow2EnergyMaxMeV:  cfg.GetAcdRow2EnergyMaxMeV(),
		NoTrackEnergyMinMeV:  cfg.GetNoTrackEnergyMinMeV(),
		SkirtEnergyMaxMeV:    cfg.GetSkirtEnergyMaxMeV(),
	}
}

// sideRows01 selects the two upper rows of a side face tile word.
const sideRows01 = 0x3ff

// Classify derives the status of an event from its per-tower ACD and skirt
// words. Towers are visited in ascending order and the first ACD word
// decides the event, whether or not its energy cut passes. A skirt word is
// only considered at or below SkirtEnergyMaxMeV. Without either, the
// projection count decides.
func Classify(r *Result, energyMeV int, th Thresholds) Status {
	for tower := range r.Acd {
		if w := r.Acd[tower]; w != 0 {
			switch {
			case l3veto.FaceOf(w) == l3veto.FaceTop:
				if energyMeV < th.AcdTopEnergyMaxMeV {
					return StatusAcdTop
				}
			case w&sideRows01 != 0:
				if energyMeV < th.AcdRow01EnergyMaxMeV {
					return StatusAcdSideRow01
				}
			default:
				if energyMeV < th.AcdRow2EnergyMaxMeV {
					return StatusAcdSideRow2
				}
			}
			return 0
		}
		if energyMeV <= th.SkirtEnergyMaxMeV && r.Skirt[tower] != 0 {
			return StatusSkirt
		}
	}

	switch n := r.Count(); {
	case n < 2:
		if energyMeV > th.NoTrackEnergyMinMeV {
			return StatusNoTracks
		}
		return 0
	case n == 2:
		return StatusOneTrack
	}
	return StatusMultiTrack
}
