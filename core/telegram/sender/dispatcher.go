// Package sender delivers outbound Bot API calls off the handler goroutine.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/httpx"
	"github.com/m3rciful/mealbot/core/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the chat's shard is saturated and the job was dropped.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize bounds pending jobs per shard.
	QueueSize int
	// Shards is the number of workers; one chat always maps to one shard.
	Shards       int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job, retries included.
	MaxDuration time.Duration
	// MaxFloodWait caps how long a job honours Telegram's retry_after.
	MaxFloodWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Shards <= 0 {
		o.Shards = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	if o.MaxFloodWait <= 0 {
		o.MaxFloodWait = 5 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	chat     int64
	action   string
	endpoint string
	run      func() error
	queued   time.Time
}

// Dispatcher runs outbound calls asynchronously with bounded retries.
// Jobs for one chat land on the same shard, so messages to a chat are
// delivered in the order they were enqueued.
type Dispatcher struct {
	opts   Options
	shards []chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	failed atomic.Uint64
}

// NewDispatcher starts the shard workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, shards: make([]chan job, opts.Shards)}
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		d.wg.Add(1)
		go func(q <-chan job) {
			defer d.wg.Done()
			for j := range q {
				d.deliver(j)
			}
		}(d.shards[i])
	}
	return d
}

// Enqueue schedules run on the shard owning chat. run may be called more
// than once when a transient failure is retried.
func (d *Dispatcher) Enqueue(ctx context.Context, chat int64, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	j := job{ctx: ctx, chat: chat, action: action, endpoint: endpoint, run: run, queued: time.Now()}
	select {
	case d.shards[uint64(chat)%uint64(len(d.shards))] <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close stops accepting jobs and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.shards {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(j.ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := 0
	var err error
	for attempts < d.opts.MaxRetries+1 {
		attempts++
		if err = j.run(); err == nil {
			break
		}
		wait, ok := d.retryAfter(err, attempts)
		if !ok || attempts > d.opts.MaxRetries {
			break
		}
		logger.Debug(ctx, "tg.sender", "send.retry",
			slog.String("action", j.action),
			slog.Int("attempt", attempts),
			slog.Duration("backoff", wait),
			slog.String("err_kind", classifyError(err)),
		)
		select {
		case <-ctx.Done():
			err = errors.Join(err, ctx.Err())
		case <-time.After(wait):
			continue
		}
		break
	}

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("action", j.action),
		slog.String("endpoint", j.endpoint),
		slog.Int("attempts", attempts),
		slog.Duration("queue_wait", start.Sub(j.queued)),
		slog.Duration("duration", time.Since(start)),
	}
	if err == nil {
		logger.Debug(j.ctx, "tg.sender", "send.done", attrs...)
		return
	}
	d.failed.Add(1)
	attrs = append(attrs,
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_kind", classifyError(err)),
	)
	logger.Error(j.ctx, "tg.sender", "send.done", attrs...)
}

// retryAfter reports whether err is worth another attempt and how long to
// wait first. Flood control waits are honoured up to MaxFloodWait.
func (d *Dispatcher) retryAfter(err error, attempt int) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		wait := time.Duration(flood.RetryAfter) * time.Second
		return wait, wait <= d.opts.MaxFloodWait
	}
	if httpx.ShouldRetry(err) {
		return d.opts.RetryBackoff * time.Duration(attempt), true
	}
	return 0, false
}

func classifyError(err error) string {
	if kind := httpx.StatusKind(telegramStatus(err)); kind != "" {
		return kind
	}
	return httpx.Classify(err)
}

// sanitizeErrorMessage keeps bot tokens embedded in request URLs out of logs.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return logger.SanitizeLimit(tokenRe.ReplaceAllString(err.Error(), "bot<redacted>"), 512)
}

// telegramStatus extracts the Bot API error code. telebot formats some
// errors as "description (code)", so the trailing number is parsed as a
// last resort.
func telegramStatus(err error) int {
	var apiErr *tele.Error
	var flood tele.FloodError
	var group tele.GroupError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.As(err, &flood):
		return http.StatusTooManyRequests
	case errors.As(err, &group):
		return http.StatusBadRequest
	}
	msg := strings.TrimSpace(err.Error())
	if !strings.HasSuffix(msg, ")") {
		return 0
	}
	open := strings.LastIndexByte(msg, '(')
	if open < 0 {
		return 0
	}
	code, _ := strconv.Atoi(msg[open+1 : len(msg)-1])
	return code
}
