package proofread

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// Defaults for Relay options.
const (
	DefaultInterval      = time.Second
	DefaultDeadline      = 30 * time.Second
	DefaultCursor        = "▌"
	DefaultFinalTimeout  = 10 * time.Second
	defaultFailureReason = "completion failed"
)

// Relay streams a completion into a Sink, republishing the growing text at
// most once per interval, and finishes every run with exactly one terminal
// publish. A Relay holds no per-run state and is safe for concurrent use.
type Relay struct {
	provider     Provider
	catalog      Catalog
	interval     time.Duration
	deadline     time.Duration
	finalTimeout time.Duration
	cursor       string
	now          func() time.Time
	logger       *slog.Logger
	observer     Observer
}

// Option configures a Relay.
type Option func(*Relay)

// WithInterval sets the minimum time between two non-terminal publishes.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

// WithDeadline sets the overall time budget of one run. Zero disables it.
func WithDeadline(d time.Duration) Option {
	return func(r *Relay) { r.deadline = d }
}

// WithFinalTimeout bounds the terminal publish, which runs after the
// run's own context may already be done.
func WithFinalTimeout(d time.Duration) Option {
	return func(r *Relay) { r.finalTimeout = d }
}

// WithCursor sets the marker appended to streaming snapshots.
func WithCursor(cursor string) Option {
	return func(r *Relay) { r.cursor = cursor }
}

// WithClock sets the time source used for throttling decisions.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

// WithLogger sets the logger. Nil keeps the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver sets the run lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Relay) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRelay creates a Relay that reads completions from provider and
// localizes terminal messages with catalog.
func NewRelay(provider Provider, catalog Catalog, opts ...Option) *Relay {
	r := &Relay{
		provider:     provider,
		catalog:      catalog,
		interval:     DefaultInterval,
		deadline:     DefaultDeadline,
		finalTimeout: DefaultFinalTimeout,
		cursor:       DefaultCursor,
		now:          time.Now,
		logger:       slog.New(slog.DiscardHandler),
		observer:     nopObserver{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	lang  Language
	attrs []any
}

// WithLanguage sets the language of the terminal message.
func WithLanguage(lang Language) RunOption {
	return func(c *runConfig) { c.lang = lang }
}

// WithLogAttrs adds attributes to every log record of the run.
func WithLogAttrs(attrs ...any) RunOption {
	return func(c *runConfig) { c.attrs = append(c.attrs, attrs...) }
}

// Run streams the completion for req into sink and returns the terminal
// Result after publishing it. Run never returns early on a sink error; only
// a transport failure, the deadline, or ctx cancellation end the stream
// before io.EOF.
//
// The caller decides whether several runs may target the same user at once;
// Run itself shares no state between invocations.
func (r *Relay) Run(ctx context.Context, req Request, sink Sink, opts ...RunOption) Result {
	cfg := runConfig{lang: DefaultLanguage}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := r.logger.With(cfg.attrs...)

	start := r.now()
	r.observer.RunStarted()

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.deadline)
	}
	defer cancel()

	text, err := r.consume(runCtx, req, sink, NewRateLimiter(r.interval, start), logger)

	var res Result
	switch {
	case err == nil:
		res = Classify(text)
	case ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		logger.Warn("completion deadline exceeded", "deadline", r.deadline)
		res = ResultTimedOut{}
	default:
		logger.Error("completion failed", "error", err)
		res = ResultFailed{Reason: failureReason(err)}
	}

	r.publishTerminal(ctx, sink, TerminalText(res, cfg.lang, r.catalog), logger)

	elapsed := r.now().Sub(start)
	r.observer.RunFinished(res, elapsed)
	logger.Info("run finished", "result", res.Kind(), "elapsed", elapsed)
	return res
}

// consume drains the stream, publishing throttled snapshots, and returns
// the complete text. A non-nil error means the text must not be classified.
func (r *Relay) consume(ctx context.Context, req Request, sink Sink, limiter *RateLimiter, logger *slog.Logger) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	stream, err := r.provider.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var buf Buffer
	for {
		evt, err := stream.Next()
		if errors.Is(err, io.EOF) {
			// A stream that ends only because the deadline fired is not complete.
			if err := ctx.Err(); err != nil {
				return "", err
			}
			break
		}
		if err != nil {
			return "", err
		}
		// A chunk that lost the race against the deadline is discarded.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		delta, ok := evt.(EventTextDelta)
		if !ok || delta.Delta == "" {
			continue
		}
		buf.Append(delta.Delta)

		now := r.now()
		if !limiter.Allow(now) {
			continue
		}
		snapshot := buf.Fold()
		pubErr := sink.Replace(ctx, snapshot+r.cursor)
		if pubErr != nil {
			logger.Debug("publish rejected", "error", pubErr, "length", len(snapshot))
		}
		r.observer.Published(pubErr)
		limiter.Commit(now)
	}

	if c, err := stream.Completion(); err == nil {
		logger.Debug("stream complete", "stop_reason", c.StopReason, "input_tokens", c.Usage.InputTokens, "output_tokens", c.Usage.OutputTokens)
	}
	return buf.Fold(), nil
}

// publishTerminal performs the single terminal publish. It detaches from
// ctx cancellation so a timed-out or cancelled run can still replace the
// streaming display. A throttled attempt is retried once after the
// requested delay if that fits within the final timeout.
func (r *Relay) publishTerminal(ctx context.Context, sink Sink, text string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.finalTimeout)
	defer cancel()
	err := sink.Replace(ctx, text)
	if d, ok := RetryDelay(err); ok {
		logger.Debug("terminal publish throttled", "retry_after", d)
		if sleepCtx(ctx, d) {
			err = sink.Replace(ctx, text)
		}
	}
	if err != nil {
		logger.Warn("terminal publish failed", "error", err)
	}
}

// sleepCtx waits for d and reports false if ctx ends first or cannot last
// that long.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func failureReason(err error) string {
	if err == nil {
		return defaultFailureReason
	}
	return err.Error()
}
