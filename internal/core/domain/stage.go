package domain

import "fmt"

// Stage identifies a step of the private order pipeline. Stages run strictly
// in order, one at a time.
type Stage int

const (
	StageNone Stage = iota
	StageSubmitRelToIntermediate
	StagePollMainBalance
	StageWithdrawToIntermediateProcess
	StagePollIntermediateBalance
	StageSubmitIntermediateToBase
	StagePollFinalLeg
	StageDone
)

var stageNames = map[Stage]string{
	StageNone:                          "None",
	StageSubmitRelToIntermediate:       "SubmitRelToIntermediate",
	StagePollMainBalance:               "PollMainBalance",
	StageWithdrawToIntermediateProcess: "WithdrawToIntermediateProcess",
	StagePollIntermediateBalance:       "PollIntermediateBalance",
	StageSubmitIntermediateToBase:      "SubmitIntermediateToBase",
	StagePollFinalLeg:                  "PollFinalLeg",
	StageDone:                          "Done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Next returns the stage that follows s. Done is a fixed point.
func (s Stage) Next() Stage {
	if s >= StageDone {
		return StageDone
	}
	return s + 1
}

// IsValid ...
func (s Stage) IsValid() bool {
	return s >= StageNone && s <= StageDone
}

// ParseStage returns the stage matching the given name.
func ParseStage(name string) (Stage, error) {
	for stage, n := range stageNames {
		if n == name {
			return stage, nil
		}
	}
	return StageNone, fmt.Errorf("%w: %s", ErrUnknownStage, name)
}
