/* stages.go
 * Contains the logic for classifying which stage and which side of the bracket a match belongs to
 */

package logic

import (
	"strings"

	"tourney-threads/api/shared"
)

// StageType is the match-generation format of a tournament segment
type StageType int

const (
	StageUnknown StageType = iota
	StageSwiss
	StageGroups
	StageElimination
)

func (s StageType) String() string {
	switch s {
	case StageSwiss:
		return "Swiss"
	case StageGroups:
		return "Groups"
	case StageElimination:
		return "Elimination"
	default:
		return "Unknown"
	}
}

// Label is the value exposed to templates as {stage}. An unknown stage renders as an empty string
func (s StageType) Label() string {
	if s == StageUnknown {
		return ""
	}
	return s.String()
}

// ParseStageType converts a stage name (case insensitive) into a StageType. Unrecognised names give StageUnknown
func ParseStageType(name string) StageType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "swiss":
		return StageSwiss
	case "groups", "group":
		return StageGroups
	case "elimination":
		return StageElimination
	default:
		return StageUnknown
	}
}

// BracketSide is the progression a round belongs to
type BracketSide int

const (
	BracketRound BracketSide = iota
	BracketWinners
	BracketLosers
)

func (b BracketSide) String() string {
	switch b {
	case BracketWinners:
		return "Winners"
	case BracketLosers:
		return "Losers"
	default:
		return "Round"
	}
}

// BracketFor maps the sign of a round number to its bracket side. Round 0 is not emitted by the service but is
// treated as a plain numbered round
func BracketFor(round int) BracketSide {
	switch {
	case round > 0:
		return BracketWinners
	case round < 0:
		return BracketLosers
	default:
		return BracketRound
	}
}

// StageInfo is the classification of a single match
type StageInfo struct {
	Stage   StageType
	Bracket BracketSide
}

// StageClassifier classifies matches of one fetched match set
type StageClassifier struct {
	stage StageType
}

// NewStageClassifier builds a classifier for a fetched match set.
// Preconditions: Receives the stage hint from the tournament metadata (StageUnknown when there is none) and the full
// set of fetched matches
// Postconditions: Returns a classifier whose stage is the hint when one is given, otherwise Elimination when both
// winners and losers rounds were observed, otherwise Unknown
func NewStageClassifier(hint StageType, matches []shared.Match) StageClassifier {
	if hint != StageUnknown {
		return StageClassifier{stage: hint}
	}

	var positive, negative bool
	for _, m := range matches {
		if m.Round > 0 {
			positive = true
		} else if m.Round < 0 {
			negative = true
		}
	}
	if positive && negative {
		return StageClassifier{stage: StageElimination}
	}
	return StageClassifier{stage: StageUnknown}
}

// Stage returns the stage type every match of the set is classified with
func (c StageClassifier) Stage() StageType {
	return c.stage
}

// Classify returns the stage and bracket side of a match. It never fails
func (c StageClassifier) Classify(m shared.Match) StageInfo {
	return StageInfo{Stage: c.stage, Bracket: BracketFor(m.Round)}
}
