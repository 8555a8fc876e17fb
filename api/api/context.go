/* context.go
 * Contains the run settings used for rendering and the function that turns one match into its thread title and
 * opening message
 */

package api

import (
	"tourney-threads/api/logic"
	"tourney-threads/api/shared"
	"tourney-threads/config"
)

// Settings is the part of the configuration the Orchestrator needs
type Settings struct {
	ThreadNameTemplate string
	MessageTemplate    string
	RoundLabelTemplate string
	RunnerMap          map[string]string
	RoleIDs            []string
	ChannelID          string
	ArchiveMinutes     int
	DryRun             bool
}

// SettingsFromConfig copies the rendering and Discord settings out of a config
func SettingsFromConfig(cfg *config.Config, dryRun bool) Settings {
	return Settings{
		ThreadNameTemplate: cfg.ThreadNameTemplate,
		MessageTemplate:    cfg.MessageTemplate,
		RoundLabelTemplate: cfg.RoundLabelTemplate,
		RunnerMap:          cfg.Runners(),
		RoleIDs:            cfg.RoleIDs(),
		ChannelID:          string(cfg.Discord.ChannelID),
		ArchiveMinutes:     cfg.ArchiveMinutes(),
		DryRun:             dryRun,
	}
}

// Rendered is a match ready to be previewed or submitted
type Rendered struct {
	Title   string
	Message string
	Vars    logic.RenderContext
}

// BuildRenderContext fills every template variable for a match except the round label.
// Preconditions: Receives the match, its classification, the tournament name and the run settings
// Postconditions: Returns the render context; RoundLabel is left empty for the RoundLabeler to produce
func BuildRenderContext(m shared.Match, info logic.StageInfo, tournament string, s Settings) logic.RenderContext {
	p1Name, p1Mention := logic.ResolveParticipant(m.Player1, s.RunnerMap)
	p2Name, p2Mention := logic.ResolveParticipant(m.Player2, s.RunnerMap)

	absRound := m.Round
	if absRound < 0 {
		absRound = -absRound
	}

	return logic.RenderContext{
		P1Name:         p1Name,
		P2Name:         p2Name,
		P1Mention:      p1Mention,
		P2Mention:      p2Mention,
		Stage:          info.Stage.Label(),
		Bracket:        info.Bracket.String(),
		Round:          m.Round,
		AbsRound:       absRound,
		MatchID:        m.ID,
		MatchState:     string(m.State),
		MatchURL:       m.URL,
		TournamentName: tournament,
		RoleMentions:   logic.BuildRoleMentions(s.RoleIDs),
	}
}

// RenderMatch produces the thread title and opening message of a match.
// Preconditions: Receives the match, the classifier built over the whole match set, the tournament name and settings
// Postconditions: Returns the rendered match, or the *logic.TemplateError of the first template that failed
func RenderMatch(m shared.Match, classifier logic.StageClassifier, tournament string, s Settings) (Rendered, error) {
	info := classifier.Classify(m)
	vars := BuildRenderContext(m, info, tournament, s)

	label, err := logic.RoundLabeler{Template: s.RoundLabelTemplate}.Label(info, vars)
	if err != nil {
		return Rendered{Vars: vars}, err
	}
	vars = vars.WithRoundLabel(label)

	title, err := logic.RenderTitle(s.ThreadNameTemplate, vars)
	if err != nil {
		return Rendered{Vars: vars}, err
	}
	message, err := logic.RenderMessage(s.MessageTemplate, vars)
	if err != nil {
		return Rendered{Title: title, Vars: vars}, err
	}
	return Rendered{Title: title, Message: message, Vars: vars}, nil
}
