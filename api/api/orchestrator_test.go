/* orchestrator_test.go
 * Contains unit tests for orchestrator.go and preview.go covering dry runs, live runs and per-match failures
 */

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"tourney-threads/api/logic"
	"tourney-threads/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func aliceBobTournament() Tournament {
	return Tournament{
		Name: "cup",
		Matches: []shared.Match{
			{
				ID: "m1", Round: 1, State: shared.MatchOpen,
				Player1: &shared.Participant{ID: "1", Name: "Alice"},
				Player2: &shared.Participant{ID: "2", Name: "Bob (invitation pending)"},
			},
			{ID: "m2", Round: -1, State: shared.MatchPending},
		},
	}
}

func testSettings(dryRun bool) Settings {
	return Settings{
		ThreadNameTemplate: "{round_label}: {p1_name} vs {p2_name}",
		MessageTemplate:    "{p1_mention} vs {p2_mention}",
		RunnerMap:          map[string]string{"Alice": "111"},
		ChannelID:          "chan",
		ArchiveMinutes:     10080,
		DryRun:             dryRun,
	}
}

// region dry run tests

func TestRun_DryRunPreview(t *testing.T) {
	var out bytes.Buffer
	creator := &MockCreator{}
	orchestrator := NewOrchestrator(testSettings(true), creator, &out, discardLogger())

	report := orchestrator.Run(context.Background(), aliceBobTournament())

	assert.Equal(t, "=== DRY RUN: Discord threads preview ===\n"+
		"\nTHREAD: Winners R1: Alice vs Bob\nMESSAGE:\n<@111> vs Bob\n\n"+
		"\nTHREAD: Losers R1: TBD vs TBD\nMESSAGE:\nTBD vs TBD\n\n"+
		"=== END DRY RUN ===\n", out.String())
	assert.False(t, report.Failed())
	assert.Equal(t, 2, report.Count(StatePreviewed))
	assert.Empty(t, creator.Threads)
}

func TestRun_DryRunIsRepeatable(t *testing.T) {
	var first, second bytes.Buffer

	NewOrchestrator(testSettings(true), nil, &first, discardLogger()).Run(context.Background(), aliceBobTournament())
	NewOrchestrator(testSettings(true), nil, &second, discardLogger()).Run(context.Background(), aliceBobTournament())

	assert.Equal(t, first.String(), second.String())
}

func TestRun_DryRunNoMatches(t *testing.T) {
	var out bytes.Buffer

	report := NewOrchestrator(testSettings(true), nil, &out, discardLogger()).Run(context.Background(), Tournament{Name: "cup"})

	assert.Equal(t, "=== DRY RUN ===\n(No matches to show)\n=== END DRY RUN ===\n", out.String())
	assert.False(t, report.Failed())
	assert.Empty(t, report.Outcomes)
}

func TestRun_MessageTooLongFailsOnlyThatMatch(t *testing.T) {
	var out bytes.Buffer
	settings := testSettings(true)
	settings.MessageTemplate = "{p1_name}" + strings.Repeat("x", 1990)
	tournament := aliceBobTournament()
	tournament.Matches[1].Player1 = &shared.Participant{ID: "3", Name: "Christopher"}

	report := NewOrchestrator(settings, nil, &out, discardLogger()).Run(context.Background(), tournament)

	// "Alice" fits in 2000 characters, "Christopher" does not
	assert.Contains(t, out.String(), "THREAD: Winners R1: Alice vs Bob")
	assert.NotContains(t, out.String(), "Christopher vs TBD")
	assert.True(t, report.Failed())
	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "m2", failures[0].MatchID)
	assert.Equal(t, FailureTemplateLength, failures[0].Kind)
	assert.ErrorIs(t, failures[0].Err, logic.ErrMessageTooLong)
}

func TestRun_UndefinedVariableFailsEveryMatch(t *testing.T) {
	var out bytes.Buffer
	settings := testSettings(true)
	settings.ThreadNameTemplate = "{round_label} {seed}"

	report := NewOrchestrator(settings, nil, &out, discardLogger()).Run(context.Background(), aliceBobTournament())

	failures := report.Failures()
	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.Equal(t, FailureTemplate, f.Kind)
		var te *logic.TemplateError
		require.ErrorAs(t, f.Err, &te)
		assert.Equal(t, "seed", te.Variable)
		assert.Equal(t, "thread name", te.Template)
	}
	assert.NotContains(t, out.String(), "THREAD:")
}

func TestRun_CustomRoundLabel(t *testing.T) {
	var out bytes.Buffer
	settings := testSettings(true)
	settings.RoundLabelTemplate = "{bracket} Round {abs_round}"

	NewOrchestrator(settings, nil, &out, discardLogger()).Run(context.Background(), aliceBobTournament())

	assert.Contains(t, out.String(), "THREAD: Winners Round 1: Alice vs Bob")
	assert.Contains(t, out.String(), "THREAD: Losers Round 1: TBD vs TBD")
}

func TestRun_SwissHint(t *testing.T) {
	var out bytes.Buffer
	tournament := aliceBobTournament()
	tournament.Stage = logic.StageSwiss

	NewOrchestrator(testSettings(true), nil, &out, discardLogger()).Run(context.Background(), tournament)

	assert.Contains(t, out.String(), "THREAD: Swiss R1: Alice vs Bob")
}

// endregion

// region live run tests

func TestRun_LiveCreatesThreads(t *testing.T) {
	var out bytes.Buffer
	creator := &MockCreator{}
	settings := testSettings(false)
	settings.RoleIDs = []string{"900"}
	settings.MessageTemplate = "{p1_mention} vs {p2_mention} {role_mentions}"

	report := NewOrchestrator(settings, creator, &out, discardLogger()).Run(context.Background(), aliceBobTournament())

	assert.False(t, report.Failed())
	assert.Empty(t, out.String())
	assert.Equal(t, []CreatedThread{
		{ChannelID: "chan", Title: "Winners R1: Alice vs Bob", Message: "<@111> vs Bob <@&900>", ArchiveMinutes: 10080},
		{ChannelID: "chan", Title: "Losers R1: TBD vs TBD", Message: "TBD vs TBD <@&900>", ArchiveMinutes: 10080},
	}, creator.Threads)
	assert.Equal(t, "thread_1", report.Outcomes[0].ThreadID)
	assert.Equal(t, 2, report.Count(StateSubmitted))
}

func TestRun_SubmitFailureContinues(t *testing.T) {
	boom := errors.New("HTTP 403 Forbidden")
	creator := &MockCreator{Errors: map[string]error{"Winners R1: Alice vs Bob": boom}}

	report := NewOrchestrator(testSettings(false), creator, nil, discardLogger()).Run(context.Background(), aliceBobTournament())

	assert.True(t, report.Failed())
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, StateFailed, report.Outcomes[0].State)
	assert.Equal(t, FailureSubmit, report.Outcomes[0].Kind)
	var submitErr *SubmitError
	require.ErrorAs(t, report.Outcomes[0].Err, &submitErr)
	assert.Equal(t, "m1", submitErr.MatchID)
	assert.ErrorIs(t, report.Outcomes[0].Err, boom)
	assert.Equal(t, StateSubmitted, report.Outcomes[1].State)
	assert.Len(t, creator.Threads, 1)
}

func TestRun_CancelledBetweenMatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	creator := &MockCreator{OnCreate: cancel}

	report := NewOrchestrator(testSettings(false), creator, nil, discardLogger()).Run(ctx, aliceBobTournament())

	assert.Len(t, creator.Threads, 1)
	assert.Len(t, report.Outcomes, 1)
	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.True(t, report.Failed())
}

func TestRun_LiveNoMatches(t *testing.T) {
	creator := &MockCreator{}

	report := NewOrchestrator(testSettings(false), creator, nil, discardLogger()).Run(context.Background(), Tournament{})

	assert.False(t, report.Failed())
	assert.Empty(t, creator.Threads)
}

// endregion

// region Report tests

func TestReport_Summary(t *testing.T) {
	report := Report{Outcomes: []Outcome{
		{MatchID: "1", State: StateSubmitted},
		{MatchID: "2", State: StateFailed, Kind: FailureSubmit, Err: &SubmitError{MatchID: "2", Err: errors.New("HTTP 500")}},
		{MatchID: "3", State: StateFailed, Kind: FailureTemplateLength, Err: errors.New("too long")},
	}}

	summary := report.Summary()

	assert.Contains(t, summary, "match 2: submit: creating thread for match 2: HTTP 500\n")
	assert.Contains(t, summary, "match 3: template-length: too long\n")
	assert.True(t, strings.HasSuffix(summary, "3 matches: 0 previewed, 1 submitted, 2 failed"))
}

// endregion

// region WriteDebugSummary tests

func TestWriteDebugSummary(t *testing.T) {
	var out bytes.Buffer
	settings := testSettings(true)
	settings.RunnerMap = map[string]string{"Alice": "111", "Bobby": "222"}

	WriteDebugSummary(&out, aliceBobTournament(), settings)

	assert.Contains(t, out.String(), "=== Matches Summary (stage: Elimination) ===")
	assert.Contains(t, out.String(), "- match_id=m1  state=open  round=1 (Winners R1)  p1_id=1 username='Alice' mention=<@111>  p2_id=2 username='Bob' mention=Bob\n")
	assert.Contains(t, out.String(), "- match_id=m2  state=pending  round=-1 (Losers R1)  p1_id=None username='TBD' mention=TBD")
	assert.Contains(t, out.String(), "hint: 'Bob' is not in runner_map, did you mean 'Bobby'?")
}

func TestWriteDebugSummary_NoMatches(t *testing.T) {
	var out bytes.Buffer

	WriteDebugSummary(&out, Tournament{}, testSettings(true))

	assert.Equal(t, "\n(No matches returned)\n", out.String())
}

// endregion
