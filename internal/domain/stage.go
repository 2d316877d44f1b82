package domain

// Stage enumerates funnel states.
type Stage string

const (
	StageAcquisition   Stage = "acquisition"
	StageQualification Stage = "qualification"
	StageOffer         Stage = "offer"
	StageClosing       Stage = "closing"
	StageSupport       Stage = "support"
	StageComplaints    Stage = "complaints"
	StageRetention     Stage = "retention"
	StageDone          Stage = "done"
	StageHandoff       Stage = "handoff"
)

// stageTransitions is the declared transition graph for funnel progression.
// Handoff is reachable from every stage via escalation and Support and
// Complaints are intent-driven service entries from any active stage, so
// neither is listed per-stage.
var stageTransitions = map[Stage][]Stage{
	StageAcquisition:   {StageQualification},
	StageQualification: {StageOffer},
	StageOffer:         {StageClosing},
	StageClosing:       {StageDone},
	StageSupport:       {StageDone, StageHandoff},
	StageComplaints:    {StageHandoff},
	StageRetention:     {StageQualification, StageDone},
	StageDone:          {StageAcquisition, StageRetention}, // re-engagement
}

// CanTransition reports whether moving from one stage to another is legal.
// Staying in place is always allowed; Handoff is a universal escalation
// exit; Support and Complaints accept entry from any non-terminal stage.
func CanTransition(from, to Stage) bool {
	if from == to {
		return true
	}
	if to == StageHandoff {
		return true
	}
	if (to == StageSupport || to == StageComplaints) && !from.IsTerminal() {
		return true
	}
	for _, candidate := range stageTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage ends the current engagement.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageHandoff
}
