/* test_mocks.go
 * Contains mock structures for testing the API package and its consumers
 */

package api

import (
	"context"
	"fmt"
	"sync"

	"tourney-threads/api/external"
	"tourney-threads/api/shared"
)

// MockSource implements MatchLister and StageProber for testing
type MockSource struct {
	Matches []shared.Match
	Stage   string

	// Error injection for testing error paths
	FetchError error
	ProbeError error

	// Recorded calls
	FetchOptions []external.FetchOptions
	Probed       []string

	mu sync.Mutex
}

// FetchAll implements MatchLister
func (m *MockSource) FetchAll(ctx context.Context, opts external.FetchOptions) ([]shared.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchOptions = append(m.FetchOptions, opts)
	if m.FetchError != nil {
		return nil, m.FetchError
	}
	return append([]shared.Match(nil), m.Matches...), nil
}

// ProbeStageType implements StageProber
func (m *MockSource) ProbeStageType(ctx context.Context, tournament string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Probed = append(m.Probed, tournament)
	if m.ProbeError != nil {
		return "", m.ProbeError
	}
	return m.Stage, nil
}

// CreatedThread is a thread recorded by MockCreator
type CreatedThread struct {
	ChannelID      string
	Title          string
	Message        string
	ArchiveMinutes int
}

// MockCreator implements ThreadCreator for testing
type MockCreator struct {
	Threads []CreatedThread
	// Errors fails the threads with the given titles
	Errors map[string]error
	// OnCreate runs after each successful creation
	OnCreate func()
}

// CreateThread implements ThreadCreator
func (m *MockCreator) CreateThread(ctx context.Context, channelID string, title string, message string, archiveMinutes int) (string, error) {
	if err := m.Errors[title]; err != nil {
		return "", err
	}
	m.Threads = append(m.Threads, CreatedThread{
		ChannelID:      channelID,
		Title:          title,
		Message:        message,
		ArchiveMinutes: archiveMinutes,
	})
	if m.OnCreate != nil {
		m.OnCreate()
	}
	return fmt.Sprintf("thread_%d", len(m.Threads)), nil
}
