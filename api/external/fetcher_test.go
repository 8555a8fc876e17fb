/* fetcher_test.go
 * Contains unit tests for fetcher.go using an in-memory page source
 */

package external

import (
	"context"
	"errors"
	"testing"

	"tourney-threads/api/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageSource serves canned pages and records the requests made
type pageSource struct {
	pages  map[int]MatchPage
	errs   map[int]error
	calls  []int
	states []string
}

func (s *pageSource) FetchMatchesPage(ctx context.Context, tournament string, state string, page int, perPage int) (MatchPage, error) {
	s.calls = append(s.calls, page)
	s.states = append(s.states, state)
	if err := s.errs[page]; err != nil {
		return MatchPage{}, err
	}
	return s.pages[page], nil
}

func ref(id string) *shared.Participant {
	return &shared.Participant{ID: id}
}

// region FetchAll tests

func TestFetchAll_FollowsPagesInOrder(t *testing.T) {
	source := &pageSource{pages: map[int]MatchPage{
		1: {
			Matches:      []shared.Match{{ID: "a", Round: 1, Player1: ref("1"), Player2: ref("2")}, {ID: "b", Round: 1}},
			Participants: []shared.Participant{{ID: "1", Name: "Alice"}},
			HasNextPage:  true,
		},
		2: {
			Matches:      []shared.Match{{ID: "c", Round: -1, Player1: ref("2")}},
			Participants: []shared.Participant{{ID: "2", Name: "Bob"}},
			HasNextPage:  false,
		},
	}}
	fetcher := NewFetcher(source, nil)

	matches, err := fetcher.FetchAll(context.Background(), FetchOptions{Tournament: "cup", PerPage: 2})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, source.calls)
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})

	// participants listed on a later page still resolve references from an earlier page
	assert.Equal(t, &shared.Participant{ID: "1", Name: "Alice"}, matches[0].Player1)
	assert.Equal(t, &shared.Participant{ID: "2", Name: "Bob"}, matches[0].Player2)
	assert.Nil(t, matches[1].Player1)
	assert.Equal(t, "Bob", matches[2].Player1.Name)
}

func TestFetchAll_UnknownParticipantBecomesUndetermined(t *testing.T) {
	source := &pageSource{pages: map[int]MatchPage{
		1: {Matches: []shared.Match{{ID: "a", Player1: ref("404")}}},
	}}

	matches, err := NewFetcher(source, nil).FetchAll(context.Background(), FetchOptions{Tournament: "cup"})

	require.NoError(t, err)
	assert.Nil(t, matches[0].Player1)
}

func TestFetchAll_PageFailureIsFatal(t *testing.T) {
	boom := errors.New("connection reset")
	source := &pageSource{
		pages: map[int]MatchPage{1: {Matches: []shared.Match{{ID: "a"}}, HasNextPage: true}},
		errs:  map[int]error{2: boom},
	}

	matches, err := NewFetcher(source, nil).FetchAll(context.Background(), FetchOptions{Tournament: "cup"})

	assert.Nil(t, matches)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Page)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 2")
}

func TestFetchAll_StopsAtPageCap(t *testing.T) {
	source := &pageSource{pages: map[int]MatchPage{}}
	for i := 1; i <= 10; i++ {
		source.pages[i] = MatchPage{Matches: []shared.Match{{ID: string(rune('a' + i))}}, HasNextPage: true}
	}

	matches, err := NewFetcher(source, nil).FetchAll(context.Background(), FetchOptions{Tournament: "cup", MaxPages: 3})

	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Equal(t, []int{1, 2, 3}, source.calls)
}

func TestFetchAll_StopsOnEmptyPage(t *testing.T) {
	source := &pageSource{pages: map[int]MatchPage{
		1: {Matches: []shared.Match{{ID: "a"}}, HasNextPage: true},
		2: {HasNextPage: true},
	}}

	matches, err := NewFetcher(source, nil).FetchAll(context.Background(), FetchOptions{Tournament: "cup"})

	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, []int{1, 2}, source.calls)
}

func TestFetchAll_StartPageAndAllState(t *testing.T) {
	source := &pageSource{pages: map[int]MatchPage{3: {Matches: []shared.Match{{ID: "a"}}}}}

	_, err := NewFetcher(source, nil).FetchAll(context.Background(), FetchOptions{Tournament: "cup", StartPage: 3, State: "all"})

	require.NoError(t, err)
	assert.Equal(t, []int{3}, source.calls)
	assert.Equal(t, []string{""}, source.states)
}

func TestFetchAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(&pageSource{}, nil).FetchAll(ctx, FetchOptions{Tournament: "cup"})

	assert.ErrorIs(t, err, context.Canceled)
}

// endregion
