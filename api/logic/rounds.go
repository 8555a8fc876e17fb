/* rounds.go
 * Contains the logic for generating human readable round labels
 */

package logic

import (
	"fmt"
	"strings"
)

// DefaultRoundLabel builds the built-in round label.
// Swiss and group stages are labelled by stage ("Swiss R3"), everything else by bracket side ("Winners R1",
// "Losers R2", "Round R0")
func DefaultRoundLabel(info StageInfo, round int) string {
	switch info.Stage {
	case StageSwiss, StageGroups:
		return fmt.Sprintf("%s R%d", info.Stage, abs(round))
	default:
		return fmt.Sprintf("%s R%d", info.Bracket, abs(round))
	}
}

// RoundLabeler produces round labels, optionally from a custom template
type RoundLabeler struct {
	Template string
}

// Label returns the round label for a match.
// Preconditions: Receives the match's classification and its render context (without a round label)
// Postconditions: When a non blank template is configured it is rendered with the context and replaces the built-in
// label entirely. {round_label} is undefined inside the template. Returns a *TemplateError if rendering fails
func (l RoundLabeler) Label(info StageInfo, vars RenderContext) (string, error) {
	if strings.TrimSpace(l.Template) == "" {
		return DefaultRoundLabel(info, vars.Round), nil
	}
	label, err := Render(l.Template, labelScope{vars})
	if err != nil {
		return "", named(err, "round label")
	}
	return label, nil
}

// labelScope hides the round label from the template that defines it
type labelScope struct {
	RenderContext
}

func (s labelScope) Lookup(name string) (string, bool) {
	if name == VarRoundLabel {
		return "", false
	}
	return s.RenderContext.Lookup(name)
}
