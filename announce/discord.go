/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package announce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/mikeb26/swisstd/internal"
	"github.com/sirupsen/logrus"
)

// MsgLimit keeps each message under Discord's 2000 character cap with room
// for the code block fence.
const MsgLimit = 1988

var ErrNotConfigured = errors.New("discord webhook not configured")

// Discord posts announcements to a channel webhook.
type Discord struct {
	session   *discordgo.Session
	webhookID string
	token     string
	log       *logrus.Entry
}

type Option func(d *Discord)

// WithHTTPClient replaces the client used to reach Discord.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Discord) {
		d.session.Client = c
	}
}

func NewDiscord(webhookID string, token string, opts ...Option) (*Discord, error) {
	if webhookID == "" || token == "" {
		return nil, ErrNotConfigured
	}
	// webhooks authenticate with their token; no bot login needed
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("announce.NewDiscord: %w", err)
	}
	session.UserAgent = internal.UserAgent

	d := &Discord{
		session:   session,
		webhookID: webhookID,
		token:     token,
		log:       internal.Logger("announce"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Announce posts body as monospace text under a bold title, split over as
// many messages as needed.
func (d *Discord) Announce(ctx context.Context, title string, body string) error {
	chunks := chunkContent(body, MsgLimit)
	for i, chunk := range chunks {
		content := fmt.Sprintf("```\n%s```", chunk)
		if i == 0 && title != "" {
			content = fmt.Sprintf("**%s**\n%s", title, content)
		}
		_, err := d.session.WebhookExecute(d.webhookID, d.token, true,
			&discordgo.WebhookParams{Content: content}, discordgo.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("announce.Discord: message %d of %d: %w", i+1,
				len(chunks), err)
		}
	}
	d.log.Debugf("announce.Discord: posted %q in %d messages", title, len(chunks))

	return nil
}

// chunkContent splits s on line boundaries into pieces of at most limit
// runes. Lines longer than limit are split wherever they must be.
func chunkContent(s string, limit int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(s, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if curLen+len(runes) > limit {
			flush()
		}
		cur.WriteString(string(runes))
		curLen += len(runes)
	}
	flush()

	return chunks
}
