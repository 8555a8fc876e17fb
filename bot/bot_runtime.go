/* bot_runtime.go
 * Contains the constructor for the live Discord session. Threads are created over REST only so the gateway
 * connection is never opened
 */

package bot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates an authenticated Discord REST session for a bot token
func NewSession(token string, timeout time.Duration) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	if timeout > 0 {
		session.Client = &http.Client{Timeout: timeout}
	}
	return session, nil
}
