package model

// Stage is a pipeline stage label persisted in partners.pipeline_status.
type Stage string

// Pipeline stages in funnel order.
const (
	StageProspect      Stage = "prospect"
	StageWarm          Stage = "warm"
	StageDemoScheduled Stage = "demo_scheduled"
	StageDemoDone      Stage = "demo_done"
	StageNegotiating   Stage = "negotiating"
	StageActive        Stage = "active"
	StageInactive      Stage = "inactive"
	StageLost          Stage = "lost"
)

// Stages returns the eight stage labels in funnel order. The slice is a fresh copy.
func Stages() []Stage {
	return []Stage{
		StageProspect,
		StageWarm,
		StageDemoScheduled,
		StageDemoDone,
		StageNegotiating,
		StageActive,
		StageInactive,
		StageLost,
	}
}

// Valid reports whether s is one of the eight known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageProspect, StageWarm, StageDemoScheduled, StageDemoDone,
		StageNegotiating, StageActive, StageInactive, StageLost:
		return true
	}
	return false
}

// InActiveSales reports whether s is part of the active sales motion.
func (s Stage) InActiveSales() bool {
	switch s {
	case StageWarm, StageDemoScheduled, StageDemoDone, StageNegotiating:
		return true
	}
	return false
}

// Closed reports whether s is inactive or lost.
func (s Stage) Closed() bool {
	return s == StageInactive || s == StageLost
}

// Label returns a human readable stage name.
func (s Stage) Label() string {
	switch s {
	case StageProspect:
		return "Prospect"
	case StageWarm:
		return "Warm"
	case StageDemoScheduled:
		return "Demo Scheduled"
	case StageDemoDone:
		return "Demo Done"
	case StageNegotiating:
		return "Negotiating"
	case StageActive:
		return "Active"
	case StageInactive:
		return "Inactive"
	case StageLost:
		return "Lost"
	}
	return string(s)
}
