/* models.go
 * This file contains the models used by the external package when decoding Challonge v2.1 (JSON:API) responses
 */

package external

import (
	"bytes"
	"encoding/json"
	"strings"

	"tourney-threads/api/shared"
)

// resourceID accepts JSON:API ids written either as strings or numbers
type resourceID string

func (id *resourceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = resourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = resourceID(n.String())
	return nil
}

type resourceRef struct {
	ID   resourceID `json:"id"`
	Type string     `json:"type"`
}

type relationship struct {
	Data *resourceRef `json:"data"`
}

type resource struct {
	ID            resourceID              `json:"id"`
	Type          string                  `json:"type"`
	Attributes    json.RawMessage         `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type pageLinks struct {
	Next string `json:"next"`
}

// matchesPayload is the body of GET /tournaments/{slug}/matches
type matchesPayload struct {
	Data     []resource `json:"data"`
	Included []resource `json:"included"`
	Links    *pageLinks `json:"links"`
}

type matchAttributes struct {
	State string       `json:"state"`
	Round *json.Number `json:"round"`
}

type participantAttributes struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// tournamentPayload is the body of GET /tournaments/{slug}
type tournamentPayload struct {
	Data struct {
		Attributes struct {
			State             string `json:"state"`
			GroupStageEnabled bool   `json:"group_stage_enabled"`
			GroupStageOptions *struct {
				StageType string `json:"stage_type"`
			} `json:"group_stage_options"`
		} `json:"attributes"`
	} `json:"data"`
}

// MatchPage is one page of the match listing. Player references in Matches only carry the participant id; the
// participant records of the page are in Participants
type MatchPage struct {
	Matches      []shared.Match
	Participants []shared.Participant
	HasNextPage  bool
}

// participantName picks the best available name of a participant resource
func participantName(attrs participantAttributes) string {
	for _, n := range []string{attrs.Username, attrs.Name, attrs.DisplayName} {
		if strings.TrimSpace(n) != "" {
			return n
		}
	}
	return "UNKNOWN"
}
