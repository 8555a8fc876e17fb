/* mock_session.go
 * Contains mock implementation of DiscordSession for testing
 */

package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// MockDiscordSession implements DiscordSession for testing purposes
type MockDiscordSession struct {
	mu sync.Mutex

	// ChannelType is reported for every channel lookup
	ChannelType discordgo.ChannelType
	// ChannelLookups counts Channel calls
	ChannelLookups int

	// Threads stores all threads started during tests
	Threads []MockThread
	// SentMessages stores all messages sent during tests
	SentMessages []MockMessage

	// ChannelError, ThreadError and MessageError allow tests to simulate failures of each call
	ChannelError error
	ThreadError  error
	MessageError error
	// ThreadErrors fails only the threads with the given names
	ThreadErrors map[string]error
}

// MockThread represents a thread started in a channel
type MockThread struct {
	ID                  string
	ParentID            string
	Name                string
	Type                discordgo.ChannelType
	AutoArchiveDuration int
}

// MockMessage represents a message sent to a channel
type MockMessage struct {
	ChannelID       string
	Content         string
	AllowedMentions *discordgo.MessageAllowedMentions
}

// NewMockDiscordSession creates a new MockDiscordSession backed by a guild text channel
func NewMockDiscordSession() *MockDiscordSession {
	return &MockDiscordSession{
		ChannelType:  discordgo.ChannelTypeGuildText,
		Threads:      make([]MockThread, 0),
		SentMessages: make([]MockMessage, 0),
	}
}

// Channel implements DiscordSession.Channel
func (m *MockDiscordSession) Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChannelLookups++
	if m.ChannelError != nil {
		return nil, m.ChannelError
	}
	return &discordgo.Channel{ID: channelID, Type: m.ChannelType}, nil
}

// ThreadStartComplex implements DiscordSession.ThreadStartComplex
func (m *MockDiscordSession) ThreadStartComplex(channelID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ThreadError != nil {
		return nil, m.ThreadError
	}
	if err := m.ThreadErrors[data.Name]; err != nil {
		return nil, err
	}

	thread := MockThread{
		ID:                  fmt.Sprintf("thread_%d", len(m.Threads)+1),
		ParentID:            channelID,
		Name:                data.Name,
		Type:                data.Type,
		AutoArchiveDuration: data.AutoArchiveDuration,
	}
	m.Threads = append(m.Threads, thread)

	return &discordgo.Channel{ID: thread.ID, ParentID: channelID, Name: thread.Name, Type: thread.Type}, nil
}

// ChannelMessageSendComplex implements DiscordSession.ChannelMessageSendComplex
func (m *MockDiscordSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MessageError != nil {
		return nil, m.MessageError
	}

	m.SentMessages = append(m.SentMessages, MockMessage{
		ChannelID:       channelID,
		Content:         data.Content,
		AllowedMentions: data.AllowedMentions,
	})

	return &discordgo.Message{
		ID:        "mock_message_id",
		ChannelID: channelID,
		Content:   data.Content,
	}, nil
}

// GetLastMessage returns the last message sent, or empty MockMessage if none
func (m *MockDiscordSession) GetLastMessage() MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentMessages) == 0 {
		return MockMessage{}
	}
	return m.SentMessages[len(m.SentMessages)-1]
}
