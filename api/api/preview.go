/* preview.go
 * Contains the dry run preview format and the debug summary of fetched matches
 */

package api

import (
	"fmt"
	"io"

	"tourney-threads/api/logic"
	"tourney-threads/api/shared"
)

const (
	previewHeader = "=== DRY RUN: Discord threads preview ==="
	previewFooter = "=== END DRY RUN ==="
	previewEmpty  = "=== DRY RUN ===\n(No matches to show)\n=== END DRY RUN ==="
)

func writePreview(w io.Writer, r Rendered) {
	fmt.Fprintf(w, "\nTHREAD: %s\nMESSAGE:\n%s\n\n", r.Title, r.Message)
}

// WriteDebugSummary writes one line per match with its classification, players and mentions, followed by hints for
// players whose names are close to, but not in, the runner map
func WriteDebugSummary(w io.Writer, t Tournament, s Settings) {
	if len(t.Matches) == 0 {
		fmt.Fprintln(w, "\n(No matches returned)")
		return
	}

	classifier := logic.NewStageClassifier(t.Stage, t.Matches)
	fmt.Fprintf(w, "\n=== Matches Summary (stage: %s) ===\n", classifier.Stage())

	unmapped := make(map[string]bool)
	for _, m := range t.Matches {
		info := classifier.Classify(m)
		vars := BuildRenderContext(m, info, t.Name, s)
		label, err := logic.RoundLabeler{Template: s.RoundLabelTemplate}.Label(info, vars)
		if err != nil {
			label = "label error: " + err.Error()
		}

		fmt.Fprintf(w, "- match_id=%s  state=%s  round=%d (%s)  p1_id=%s username='%s' mention=%s  p2_id=%s username='%s' mention=%s\n",
			m.ID, m.State, m.Round, label,
			participantID(m.Player1), vars.P1Name, vars.P1Mention,
			participantID(m.Player2), vars.P2Name, vars.P2Mention)

		for _, p := range []struct{ name, mention string }{{vars.P1Name, vars.P1Mention}, {vars.P2Name, vars.P2Mention}} {
			if p.name != logic.TBD && p.name == p.mention {
				unmapped[p.name] = true
			}
		}
	}

	for _, m := range t.Matches {
		for _, p := range []*shared.Participant{m.Player1, m.Player2} {
			if p == nil {
				continue
			}
			name := logic.CleanRunnerName(p.Name)
			if !unmapped[name] {
				continue
			}
			delete(unmapped, name)
			if suggestion, ok := logic.SuggestRunner(name, s.RunnerMap); ok {
				fmt.Fprintf(w, "  hint: '%s' is not in runner_map, did you mean '%s'?\n", name, suggestion)
			}
		}
	}
}

func participantID(p *shared.Participant) string {
	if p == nil {
		return "None"
	}
	return p.ID
}
