/* orchestrator.go
 * Contains the Orchestrator which drives every fetched match through rendering and then either the dry run preview
 * or thread creation, recording one outcome per match
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tourney-threads/api/logic"
)

// ThreadCreator opens a thread with an opening message on the chat platform
type ThreadCreator interface {
	CreateThread(ctx context.Context, channelID string, title string, message string, archiveMinutes int) (string, error)
}

// OutcomeState is where a match ended up
type OutcomeState string

const (
	StatePreviewed OutcomeState = "previewed"
	StateSubmitted OutcomeState = "submitted"
	StateFailed    OutcomeState = "failed"
)

// FailureKind tells apart the ways a match can fail
type FailureKind string

const (
	FailureTemplate       FailureKind = "template"
	FailureTemplateLength FailureKind = "template-length"
	FailureSubmit         FailureKind = "submit"
)

// SubmitError is returned when the chat platform rejected a thread
type SubmitError struct {
	MatchID  string
	ThreadID string // set when the thread exists but its opening message failed
	Err      error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("creating thread for match %s: %v", e.MatchID, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one match
type Outcome struct {
	MatchID  string
	Round    int
	Title    string
	State    OutcomeState
	Kind     FailureKind // empty unless State is StateFailed
	ThreadID string
	Err      error
}

// Report collects the outcomes of a run in match order
type Report struct {
	Outcomes []Outcome
	// Err is set when the run stopped before every match was processed
	Err error
}

// Failed reports whether the run should exit with a failure status
func (r Report) Failed() bool {
	return r.Err != nil || len(r.Failures()) > 0
}

// Failures returns the failed outcomes
func (r Report) Failures() []Outcome {
	var failures []Outcome
	for _, o := range r.Outcomes {
		if o.State == StateFailed {
			failures = append(failures, o)
		}
	}
	return failures
}

// Count returns how many outcomes are in a state
func (r Report) Count(state OutcomeState) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Summary lists each failure as "match {id}: {kind}: {detail}" followed by the totals
func (r Report) Summary() string {
	var sb strings.Builder
	for _, o := range r.Failures() {
		fmt.Fprintf(&sb, "match %s: %s: %v\n", o.MatchID, o.Kind, o.Err)
	}
	if r.Err != nil {
		fmt.Fprintf(&sb, "run stopped early: %v\n", r.Err)
	}
	fmt.Fprintf(&sb, "%d matches: %d previewed, %d submitted, %d failed",
		len(r.Outcomes), r.Count(StatePreviewed), r.Count(StateSubmitted), r.Count(StateFailed))
	return sb.String()
}

// Orchestrator processes the matches of a tournament one at a time
type Orchestrator struct {
	settings Settings
	creator  ThreadCreator
	preview  io.Writer
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator.
// Preconditions: Receives the run settings, the thread creator (unused and may be nil in a dry run), the writer the
// dry run preview goes to and a logger
// Postconditions: Returns a ready orchestrator
func NewOrchestrator(settings Settings, creator ThreadCreator, preview io.Writer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if preview == nil {
		preview = io.Discard
	}
	return &Orchestrator{settings: settings, creator: creator, preview: preview, logger: logger}
}

// Run renders every match in fetch order and previews or submits it.
// Preconditions: Receives a context and the loaded tournament
// Postconditions: Returns a report with one outcome per processed match. A failing match never stops the run; a
// cancelled context stops it before the next match and is recorded in Report.Err
func (o *Orchestrator) Run(ctx context.Context, t Tournament) Report {
	var report Report
	classifier := logic.NewStageClassifier(t.Stage, t.Matches)

	if o.settings.DryRun {
		if len(t.Matches) == 0 {
			fmt.Fprintln(o.preview, previewEmpty)
			return report
		}
		fmt.Fprintln(o.preview, previewHeader)
		defer fmt.Fprintln(o.preview, previewFooter)
	} else if len(t.Matches) == 0 {
		o.logger.Info("no matches to create threads for")
		return report
	}

	for _, m := range t.Matches {
		if err := ctx.Err(); err != nil {
			report.Err = err
			o.logger.Warn("run cancelled", "remaining", len(t.Matches)-len(report.Outcomes))
			break
		}

		outcome := Outcome{MatchID: m.ID, Round: m.Round}
		rendered, err := RenderMatch(m, classifier, t.Name, o.settings)
		outcome.Title = rendered.Title
		if err != nil {
			outcome.State = StateFailed
			outcome.Kind = templateFailure(err)
			outcome.Err = err
			o.logger.Warn("skipping match", "match_id", m.ID, "kind", outcome.Kind, "error", err)
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		if o.settings.DryRun {
			writePreview(o.preview, rendered)
			outcome.State = StatePreviewed
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		threadID, err := o.creator.CreateThread(ctx, o.settings.ChannelID, rendered.Title, rendered.Message, o.settings.ArchiveMinutes)
		outcome.ThreadID = threadID
		if err != nil {
			outcome.State = StateFailed
			outcome.Kind = FailureSubmit
			outcome.Err = &SubmitError{MatchID: m.ID, ThreadID: threadID, Err: err}
			o.logger.Error("thread creation failed", "match_id", m.ID, "title", rendered.Title, "error", err)
		} else {
			outcome.State = StateSubmitted
			o.logger.Info("created thread", "match_id", m.ID, "title", rendered.Title, "thread_id", threadID)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

func templateFailure(err error) FailureKind {
	if errors.Is(err, logic.ErrMessageTooLong) {
		return FailureTemplateLength
	}
	return FailureTemplate
}
