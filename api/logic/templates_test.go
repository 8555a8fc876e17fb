/* templates_test.go
 * Contains unit tests for templates.go
 */

package logic

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContext() RenderContext {
	return RenderContext{
		P1Name:         "Alice",
		P2Name:         "Bob",
		P1Mention:      "<@111>",
		P2Mention:      "Bob",
		RoundLabel:     "Winners R1",
		Stage:          "Elimination",
		Bracket:        "Winners",
		Round:          1,
		AbsRound:       1,
		MatchID:        "m1",
		MatchState:     "open",
		MatchURL:       "https://challonge.com/t/matches/m1",
		TournamentName: "t",
		RoleMentions:   "<@&5>",
	}
}

// region Render tests

func TestRender_AllVariables(t *testing.T) {
	var b strings.Builder
	for _, v := range Variables {
		b.WriteString("{" + v + "}|")
	}

	out, err := Render(b.String(), sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "Alice|Bob|<@111>|Bob|Winners R1|Elimination|Winners|1|1|m1|open|https://challonge.com/t/matches/m1|t|<@&5>|", out)
}

func TestRender_EscapedBraces(t *testing.T) {
	out, err := Render("{{x}}", RenderContext{})

	require.NoError(t, err)
	assert.Equal(t, "{x}", out)
}

func TestRender_EscapedBracesAroundVariable(t *testing.T) {
	out, err := Render("{{{p1_name}}}", sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "{Alice}", out)
}

func TestRender_NegativeRound(t *testing.T) {
	out, err := Render("{round}/{abs_round}", RenderContext{Round: -2, AbsRound: 2})

	require.NoError(t, err)
	assert.Equal(t, "-2/2", out)
}

func TestRender_UndefinedVariable(t *testing.T) {
	_, err := Render("Hi {player}", sampleContext())

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindUndefinedVariable, te.Kind)
	assert.Equal(t, "player", te.Variable)
	assert.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestRender_FormatSpecIsNotSupported(t *testing.T) {
	_, err := Render("{round:02d}", sampleContext())

	assert.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestRender_Malformed(t *testing.T) {
	for _, tmpl := range []string{"{p1_name", "p1_name}", "{}", "{p1{name}", "a } b"} {
		_, err := Render(tmpl, sampleContext())
		assert.ErrorIs(t, err, ErrMalformedTemplate, "template %q", tmpl)
	}
}

func TestRender_NoPlaceholders(t *testing.T) {
	out, err := Render("plain text ✓", RenderContext{})

	require.NoError(t, err)
	assert.Equal(t, "plain text ✓", out)
}

// endregion

// region RenderTitle tests

func TestRenderTitle_Short(t *testing.T) {
	title, err := RenderTitle("{round_label}: {p1_name} vs {p2_name}", sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "Winners R1: Alice vs Bob", title)
}

func TestRenderTitle_TruncatedToLimit(t *testing.T) {
	ctx := sampleContext()
	ctx.P1Name = strings.Repeat("a", 150)

	title, err := RenderTitle("{p1_name}", ctx)

	require.NoError(t, err)
	assert.Equal(t, MaxThreadNameLength, utf8.RuneCountInString(title))
	assert.True(t, strings.HasSuffix(title, "…"))
}

func TestRenderTitle_ExactlyAtLimitUnchanged(t *testing.T) {
	ctx := sampleContext()
	ctx.P1Name = strings.Repeat("b", MaxThreadNameLength)

	title, err := RenderTitle("{p1_name}", ctx)

	require.NoError(t, err)
	assert.Equal(t, ctx.P1Name, title)
}

func TestRenderTitle_MultiByteCharacters(t *testing.T) {
	ctx := sampleContext()
	ctx.P1Name = strings.Repeat("🎮", 120)

	title, err := RenderTitle("{p1_name}", ctx)

	require.NoError(t, err)
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, MaxThreadNameLength, utf8.RuneCountInString(title))
}

func TestRenderTitle_ErrorNamesTemplate(t *testing.T) {
	_, err := RenderTitle("{nope}", sampleContext())

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "thread name", te.Template)
	assert.Contains(t, err.Error(), "{nope}")
}

// endregion

// region RenderMessage tests

func TestRenderMessage_WithinLimit(t *testing.T) {
	msg, err := RenderMessage("Hi {p1_mention} vs {p2_mention}! {role_mentions}", sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "Hi <@111> vs Bob! <@&5>", msg)
}

func TestRenderMessage_ExactlyAtLimit(t *testing.T) {
	msg, err := RenderMessage(strings.Repeat("x", MaxMessageLength), RenderContext{})

	require.NoError(t, err)
	assert.Len(t, msg, MaxMessageLength)
}

func TestRenderMessage_TooLongIsAnError(t *testing.T) {
	ctx := sampleContext()
	ctx.P1Name = strings.Repeat("y", MaxMessageLength)

	msg, err := RenderMessage("{p1_name}!", ctx)

	assert.Empty(t, msg)
	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindMessageTooLong, te.Kind)
	assert.Equal(t, MaxMessageLength+1, te.Length)
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestRenderMessage_LengthCountsCharactersNotBytes(t *testing.T) {
	_, err := RenderMessage(strings.Repeat("é", MaxMessageLength), RenderContext{})

	assert.NoError(t, err)
}

// endregion
