// Package echo supplies the canned conversation partner for live mode: when
// the viewer types their own message instead of following the script, a
// Responder produces the reply text that the player then animates.
package echo

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Responder produces a reply to a live prompt.
type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// Canned cycles through a fixed list of stock replies, one per prompt.
type Canned struct {
	mutex   sync.Mutex
	replies []string
	next    int
}

var defaultReplies = []string{
	"That's a good question. Let me think about it for a second.",
	"Interesting, tell me more about that.",
	"I see what you mean. Here's how I'd look at it.",
	"Good point. There are a couple of angles worth considering.",
	"Fair enough. Let's take that step by step.",
}

// NewCanned returns a responder cycling through replies, or through a stock
// set when none are given.
func NewCanned(replies ...string) *Canned {
	if len(replies) == 0 {
		replies = defaultReplies
	}
	return &Canned{replies: replies}
}

func (c *Canned) Reply(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "echo responder cancelled")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	reply := c.replies[c.next%len(c.replies)]
	c.next++
	return reply, nil
}

var _ Responder = (*Canned)(nil)
