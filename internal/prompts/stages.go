package prompts

import (
	"encoding/json"
	"slices"
	"strings"
)

// Stage identifies the generation step a prompt override targets.
type Stage string

// Generation stages.
const (
	StageClassify Stage = "classify"
	StageAnswer   Stage = "answer"
)

var stages = []Stage{
	StageClassify,
	StageAnswer,
}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
