/* bot.go
 * Contains the ThreadPublisher which opens one public thread per match in the configured channel and posts the
 * opening message into it
 */

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// ErrNotTextChannel is returned when the target channel cannot hold public threads
var ErrNotTextChannel = errors.New("channel is not a guild text channel")

// ThreadPublisher creates match threads through a DiscordSession
type ThreadPublisher struct {
	session DiscordSession
	limiter *rate.Limiter
	logger  *slog.Logger

	mu       sync.Mutex
	channels map[string]error // result of the first lookup of each channel
}

// NewThreadPublisher creates a publisher.
// Preconditions: Receives a session, the maximum threads to open per minute (0 for no pacing) and a logger
// Postconditions: Returns a publisher ready to create threads
func NewThreadPublisher(session DiscordSession, threadsPerMinute int, logger *slog.Logger) *ThreadPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if threadsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(threadsPerMinute)), 1)
	}
	return &ThreadPublisher{
		session:  session,
		limiter:  limiter,
		logger:   logger,
		channels: make(map[string]error),
	}
}

// CreateThread opens a public thread named title in channelID and posts message as its first message.
// Preconditions: Receives the parent channel id, a title within Discord's thread name limit, a message within the
// message limit and one of Discord's auto archive durations
// Postconditions: Returns the new thread's id. If the thread was created but the message could not be posted the
// thread id is returned together with the error
func (p *ThreadPublisher) CreateThread(ctx context.Context, channelID string, title string, message string, archiveMinutes int) (string, error) {
	if err := p.checkChannel(ctx, channelID); err != nil {
		return "", err
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return "", err
	}

	thread, err := p.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                title,
		AutoArchiveDuration: archiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("starting thread: %w", err)
	}
	p.logger.Debug("thread created", "thread_id", thread.ID, "name", title)

	_, err = p.session.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
		Content: message,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{
				discordgo.AllowedMentionTypeUsers,
				discordgo.AllowedMentionTypeRoles,
			},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return thread.ID, fmt.Errorf("posting opening message in thread %s: %w", thread.ID, err)
	}
	return thread.ID, nil
}

// checkChannel looks the channel up once per publisher and remembers the answer
func (p *ThreadPublisher) checkChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.channels[channelID]; ok {
		return err
	}

	channel, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	switch {
	case err != nil:
		err = fmt.Errorf("looking up channel %s: %w", channelID, err)
	case channel.Type != discordgo.ChannelTypeGuildText:
		err = fmt.Errorf("channel %s: %w", channelID, ErrNotTextChannel)
	}
	if err != nil && ctx.Err() != nil {
		// a cancelled lookup says nothing about the channel
		return err
	}
	p.channels[channelID] = err
	return err
}
