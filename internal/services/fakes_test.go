package services

import (
	"context"
	"net/http"
	"sync"

	"github.com/rahul4469/verifact/internal/models"
)

type step struct {
	reply *Reply
	err   error
}

// scriptedClient replays steps in order and repeats the last one.
type scriptedClient struct {
	mu       sync.Mutex
	steps    []step
	calls    int
	enhanced []bool
	payloads []Payload
}

func newScriptedClient(steps ...step) *scriptedClient {
	return &scriptedClient{steps: steps}
}

func (c *scriptedClient) Generate(_ context.Context, payload Payload, enhanced bool) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enhanced = append(c.enhanced, enhanced)
	c.payloads = append(c.payloads, payload)
	i := c.calls
	c.calls++
	if i >= len(c.steps) {
		i = len(c.steps) - 1
	}
	s := c.steps[i]
	return s.reply, s.err
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func rateLimited() step {
	return step{err: &models.RemoteError{Class: models.ClassRateLimited, Err: errStatus(http.StatusTooManyRequests)}}
}

func failWith(class models.ErrorClass) step {
	return step{err: &models.RemoteError{Class: class}}
}

func replyText(text string, sources ...models.Source) step {
	return step{reply: &Reply{Text: text, Sources: sources}}
}

type errStatus int

func (e errStatus) Error() string { return http.StatusText(int(e)) }
