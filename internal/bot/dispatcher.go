package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	apperrors "finbot/internal/errors"
	"finbot/internal/handlers"
	"finbot/internal/logger"
	"finbot/internal/uuid"
)

// ErrDispatcherClosed is returned by Dispatch after Shutdown.
var ErrDispatcherClosed = errors.New("bot: dispatcher closed")

// Handler produces the reply to an update.
type Handler interface {
	Handle(ctx context.Context, u handlers.Update) handlers.Response
}

// Sender delivers replies.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

type mailbox struct {
	queue []handlers.Update
}

// Dispatcher runs updates of the same user one at a time in arrival order,
// while different users are served concurrently. Each user with pending
// updates gets one goroutine, which exits once the queue is empty.
type Dispatcher struct {
	ctx     context.Context
	handler Handler
	sender  Sender
	log     *zap.SugaredLogger

	mu        sync.Mutex
	mailboxes map[int64]*mailbox
	closed    bool
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. ctx is the parent of every update's context.
func NewDispatcher(ctx context.Context, handler Handler, sender Sender, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		ctx:       ctx,
		handler:   handler,
		sender:    sender,
		log:       log,
		mailboxes: make(map[int64]*mailbox),
	}
}

// Dispatch queues u behind any update of the same user still being handled.
func (d *Dispatcher) Dispatch(u handlers.Update) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	mb, running := d.mailboxes[u.ActorID]
	if !running {
		mb = &mailbox{}
		d.mailboxes[u.ActorID] = mb
	}
	mb.queue = append(mb.queue, u)

	if !running {
		d.wg.Add(1)
		go d.drain(u.ActorID, mb)
	}
	return nil
}

func (d *Dispatcher) drain(actor int64, mb *mailbox) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(mb.queue) == 0 {
			delete(d.mailboxes, actor)
			d.mu.Unlock()
			return
		}
		u := mb.queue[0]
		mb.queue = mb.queue[1:]
		d.mu.Unlock()

		d.process(u)
	}
}

func (d *Dispatcher) process(u handlers.Update) {
	_, ctx := logger.WithCorrelationID(logger.ToContext(d.ctx, d.log), "update_id", uuid.New())
	log, ctx := logger.WithContext(ctx, "actor_id", u.ActorID)

	resp := d.handle(ctx, log, u)

	if resp.DeleteInput && u.MessageID != 0 {
		if err := d.sender.DeleteMessage(ctx, u.ChatID, u.MessageID); err != nil {
			log.Warnw("failed to delete sensitive message", "error", err)
		}
	}
	if resp.Text == "" {
		return
	}
	if err := d.sender.Send(ctx, u.ChatID, resp.Text); err != nil {
		log.Errorw("failed to send reply", "error", err)
	}
}

// handle calls the handler, turning a panic into an internal error reply.
func (d *Dispatcher) handle(ctx context.Context, log *zap.SugaredLogger, u handlers.Update) (resp handlers.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("panic while handling update", "panic", fmt.Sprint(r))
			resp = handlers.Response{Text: fmt.Sprintf("❌ %s\ncode: %s",
				apperrors.ErrInternalServer.Message, apperrors.ErrInternalServer.Code)}
		}
	}()
	return d.handler.Handle(ctx, u)
}

// Pending returns the number of users with queued or running updates.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mailboxes)
}

// Shutdown stops accepting updates and waits for queued ones to finish or
// for ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
