/* templates.go
 * Contains the template renderer used for thread names, opening messages and round labels. Templates use {name}
 * placeholders, with {{ and }} producing literal braces
 */

package logic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxThreadNameLength is Discord's limit on thread names
	MaxThreadNameLength = 100
	// MaxMessageLength is Discord's limit on message content
	MaxMessageLength = 2000

	ellipsis = "…"
)

// Template variable names
const (
	VarP1Name         = "p1_name"
	VarP2Name         = "p2_name"
	VarP1Mention      = "p1_mention"
	VarP2Mention      = "p2_mention"
	VarRoundLabel     = "round_label"
	VarStage          = "stage"
	VarBracket        = "bracket"
	VarRound          = "round"
	VarAbsRound       = "abs_round"
	VarMatchID        = "match_id"
	VarMatchState     = "match_state"
	VarMatchURL       = "match_url"
	VarTournamentName = "tournament_name"
	VarRoleMentions   = "role_mentions"
)

// Variables lists every name a template may reference
var Variables = []string{
	VarP1Name, VarP2Name, VarP1Mention, VarP2Mention, VarRoundLabel, VarStage, VarBracket, VarRound, VarAbsRound,
	VarMatchID, VarMatchState, VarMatchURL, VarTournamentName, VarRoleMentions,
}

// Vars resolves template variables
type Vars interface {
	Lookup(name string) (string, bool)
}

// RenderContext holds the values of every template variable for one match
type RenderContext struct {
	P1Name         string
	P2Name         string
	P1Mention      string
	P2Mention      string
	RoundLabel     string
	Stage          string
	Bracket        string
	Round          int
	AbsRound       int
	MatchID        string
	MatchState     string
	MatchURL       string
	TournamentName string
	RoleMentions   string
}

// Lookup implements Vars. Names outside the defined variable set are reported as missing
func (c RenderContext) Lookup(name string) (string, bool) {
	switch name {
	case VarP1Name:
		return c.P1Name, true
	case VarP2Name:
		return c.P2Name, true
	case VarP1Mention:
		return c.P1Mention, true
	case VarP2Mention:
		return c.P2Mention, true
	case VarRoundLabel:
		return c.RoundLabel, true
	case VarStage:
		return c.Stage, true
	case VarBracket:
		return c.Bracket, true
	case VarRound:
		return strconv.Itoa(c.Round), true
	case VarAbsRound:
		return strconv.Itoa(c.AbsRound), true
	case VarMatchID:
		return c.MatchID, true
	case VarMatchState:
		return c.MatchState, true
	case VarMatchURL:
		return c.MatchURL, true
	case VarTournamentName:
		return c.TournamentName, true
	case VarRoleMentions:
		return c.RoleMentions, true
	}
	return "", false
}

// WithRoundLabel returns a copy of the context with the round label set
func (c RenderContext) WithRoundLabel(label string) RenderContext {
	c.RoundLabel = label
	return c
}

// ErrorKind separates the ways rendering can fail
type ErrorKind int

const (
	KindUndefinedVariable ErrorKind = iota
	KindMalformed
	KindMessageTooLong
)

func (k ErrorKind) String() string {
	switch k {
	case KindUndefinedVariable:
		return "undefined variable"
	case KindMalformed:
		return "malformed template"
	case KindMessageTooLong:
		return "message too long"
	default:
		return "unknown"
	}
}

var (
	ErrUndefinedVariable = errors.New("undefined template variable")
	ErrMalformedTemplate = errors.New("malformed template")
	ErrMessageTooLong    = errors.New("rendered message too long")
)

// TemplateError is returned when a template cannot be rendered
type TemplateError struct {
	Template string // which template failed, e.g. "message"
	Kind     ErrorKind
	Variable string // offending variable for KindUndefinedVariable
	Offset   int    // byte offset for KindMalformed
	Length   int    // rendered length for KindMessageTooLong
}

func (e *TemplateError) Error() string {
	prefix := "template"
	if e.Template != "" {
		prefix = e.Template + " template"
	}
	switch e.Kind {
	case KindUndefinedVariable:
		return fmt.Sprintf("%s: undefined variable {%s}", prefix, e.Variable)
	case KindMalformed:
		return fmt.Sprintf("%s: unmatched brace at offset %d", prefix, e.Offset)
	case KindMessageTooLong:
		return fmt.Sprintf("%s: rendered length %d exceeds %d characters", prefix, e.Length, MaxMessageLength)
	}
	return prefix + ": render failed"
}

func (e *TemplateError) Unwrap() error {
	switch e.Kind {
	case KindUndefinedVariable:
		return ErrUndefinedVariable
	case KindMalformed:
		return ErrMalformedTemplate
	case KindMessageTooLong:
		return ErrMessageTooLong
	}
	return nil
}

// Render substitutes variables into a template.
// Preconditions: Receives a template string and the variables available to it
// Postconditions: Returns the rendered string, or a *TemplateError naming the first undefined variable or the
// position of an unmatched brace
func Render(template string, vars Vars) (string, error) {
	var out strings.Builder
	out.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				out.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] != '}' || end == 0 {
				return "", &TemplateError{Kind: KindMalformed, Offset: i}
			}
			name := template[i+1 : i+1+end]
			value, ok := vars.Lookup(name)
			if !ok {
				return "", &TemplateError{Kind: KindUndefinedVariable, Variable: name}
			}
			out.WriteString(value)
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				out.WriteByte('}')
				i += 2
				continue
			}
			return "", &TemplateError{Kind: KindMalformed, Offset: i}
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// RenderTitle renders a thread name and caps it at MaxThreadNameLength characters
func RenderTitle(template string, vars Vars) (string, error) {
	title, err := Render(template, vars)
	if err != nil {
		return "", named(err, "thread name")
	}
	return TruncateTitle(title), nil
}

// RenderMessage renders a thread's opening message. A message over MaxMessageLength characters is an error, it is
// never truncated
func RenderMessage(template string, vars Vars) (string, error) {
	msg, err := Render(template, vars)
	if err != nil {
		return "", named(err, "message")
	}
	if n := utf8.RuneCountInString(msg); n > MaxMessageLength {
		return "", &TemplateError{Template: "message", Kind: KindMessageTooLong, Length: n}
	}
	return msg, nil
}

// TruncateTitle shortens a title to MaxThreadNameLength characters, ending it with an ellipsis. Truncation happens
// on character boundaries so the result is always valid UTF-8
func TruncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxThreadNameLength {
		return title
	}
	keep := MaxThreadNameLength - utf8.RuneCountInString(ellipsis)
	n := 0
	for i := range title {
		if n == keep {
			return title[:i] + ellipsis
		}
		n++
	}
	return title
}

func named(err error, template string) error {
	var te *TemplateError
	if errors.As(err, &te) && te.Template == "" {
		te.Template = template
	}
	return err
}
