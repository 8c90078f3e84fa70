package launcher

import (
	"git.home.luguber.info/inful/devlaunch/internal/buildstate"
)

// Reason explains why the build step runs or is skipped.
type Reason string

const (
	ReasonMissingBuild     Reason = "missing_build"
	ReasonRebuildRequested Reason = "rebuild_requested"
	ReasonReuse            Reason = "reuse"
)

// Decision is computed once per run from a single probe.
type Decision struct {
	Presence    buildstate.Presence
	Rebuild     bool
	ShouldBuild bool
	Reason      Reason
}

// Decide applies shouldBuild = !hasValidBuild || rebuild. An explicit
// rebuild request is reported as such even when no build exists.
func Decide(p buildstate.Presence, rebuild bool) Decision {
	d := Decision{Presence: p, Rebuild: rebuild}
	switch {
	case rebuild:
		d.ShouldBuild, d.Reason = true, ReasonRebuildRequested
	case !p.Valid():
		d.ShouldBuild, d.Reason = true, ReasonMissingBuild
	default:
		d.Reason = ReasonReuse
	}
	return d
}
