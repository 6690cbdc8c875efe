// Package bot routes Telegram updates: commands, language selection and
// grammar checks streamed into an edited reply.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/proofread"
	"github.com/fwojciec/proofread/goldmark"
	"github.com/fwojciec/proofread/telegram"
	"github.com/google/uuid"
)

// Defaults for Bot options.
const (
	DefaultPollTimeout = 30 * time.Second
	DefaultRetryDelay  = 3 * time.Second

	callbackLanguagePrefix = "lang:"
)

// API is the part of the Bot API the bot uses. *telegram.Client
// implements it.
type API interface {
	telegram.Editor
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, p telegram.SendMessageParams) (telegram.Message, error)
	AnswerCallbackQuery(ctx context.Context, id, text string) error
}

// Runner runs one correction into a sink. *proofread.Relay implements it.
type Runner interface {
	Run(ctx context.Context, req proofread.Request, sink proofread.Sink, opts ...proofread.RunOption) proofread.Result
}

// Catalog localizes messages and lists the selectable languages.
// *i18n.Catalog implements it.
type Catalog interface {
	proofread.Catalog
	Languages() []proofread.Language
	Name(lang proofread.Language) string
	Match(code string) (proofread.Language, bool)
}

var (
	_ API    = (*telegram.Client)(nil)
	_ Runner = (*proofread.Relay)(nil)
)

// Bot handles updates. At most one check runs per user at a time.
type Bot struct {
	api         API
	runner      Runner
	catalog     Catalog
	prefs       proofread.PreferenceStore
	maxWords    int
	pollTimeout time.Duration
	retryDelay  time.Duration
	format      func(string) string
	logger      *slog.Logger

	mu     sync.Mutex
	active map[int64]struct{}
	wg     sync.WaitGroup
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger. Nil keeps the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMaxWords sets the input word limit. Zero disables it.
func WithMaxWords(n int) Option {
	return func(b *Bot) { b.maxWords = n }
}

// WithPollTimeout sets the getUpdates long-poll timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) { b.pollTimeout = d }
}

// WithRetryDelay sets the pause after a failed getUpdates call.
func WithRetryDelay(d time.Duration) Option {
	return func(b *Bot) { b.retryDelay = d }
}

// WithFormat sets the Markdown to Telegram HTML conversion applied to
// every published snapshot.
func WithFormat(format func(string) string) Option {
	return func(b *Bot) { b.format = format }
}

// New creates a Bot.
func New(api API, runner Runner, catalog Catalog, prefs proofread.PreferenceStore, opts ...Option) *Bot {
	b := &Bot{
		api:         api,
		runner:      runner,
		catalog:     catalog,
		prefs:       prefs,
		maxWords:    proofread.DefaultMaxWords,
		pollTimeout: DefaultPollTimeout,
		retryDelay:  DefaultRetryDelay,
		format:      goldmark.TelegramHTML,
		logger:      slog.New(slog.DiscardHandler),
		active:      make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run long-polls for updates and handles each in its own goroutine until
// ctx is done. In-flight checks are allowed to finish before Run returns.
func (b *Bot) Run(ctx context.Context) error {
	defer b.wg.Wait()

	var offset int64
	for {
		updates, err := b.api.GetUpdates(ctx, offset, b.pollTimeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			b.logger.Warn("get updates failed", "error", err)
			if !sleep(ctx, b.retryDelay) {
				return nil
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			b.wg.Add(1)
			go func(u telegram.Update) {
				defer b.wg.Done()
				b.Handle(context.WithoutCancel(ctx), u)
			}(u)
		}
	}
}

// Handle processes one update synchronously.
func (b *Bot) Handle(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.From != nil && u.Message.Text != "":
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	user := msg.From
	lang := b.language(ctx, user)
	logger := b.logger.With("user_id", user.ID, "chat_id", msg.Chat.ID)

	switch command(msg.Text) {
	case "/start":
		text := b.catalog.Message(lang, proofread.MessageWelcome) + "\n\n" +
			b.catalog.Message(lang, proofread.MessageChooseLanguage)
		b.send(ctx, logger, telegram.SendMessageParams{ChatID: msg.Chat.ID, Text: text, ReplyMarkup: b.keyboard()})
		return
	case "/language":
		b.send(ctx, logger, telegram.SendMessageParams{
			ChatID:      msg.Chat.ID,
			Text:        b.catalog.Message(lang, proofread.MessageChooseLanguage),
			ReplyMarkup: b.keyboard(),
		})
		return
	}

	if err := proofread.ValidateInput(msg.Text, b.maxWords); err != nil {
		b.send(ctx, logger, telegram.SendMessageParams{
			ChatID:           msg.Chat.ID,
			Text:             proofread.InputErrorText(b.catalog, lang, err, b.maxWords),
			ReplyToMessageID: msg.MessageID,
		})
		return
	}

	if !b.acquire(user.ID) {
		b.send(ctx, logger, telegram.SendMessageParams{
			ChatID:           msg.Chat.ID,
			Text:             b.catalog.Message(lang, proofread.MessageBusy),
			ReplyToMessageID: msg.MessageID,
		})
		return
	}
	defer b.release(user.ID)

	placeholder, err := b.api.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:           msg.Chat.ID,
		Text:             b.catalog.Message(lang, proofread.MessageChecking),
		ReplyToMessageID: msg.MessageID,
	})
	if err != nil {
		logger.Error("send placeholder failed", "error", err)
		return
	}

	sink := telegram.NewMessageSink(b.api, msg.Chat.ID, placeholder.MessageID,
		telegram.WithParseMode(telegram.ParseModeHTML),
		telegram.WithFormat(b.format))
	req := proofread.CorrectionRequest(b.catalog, lang, msg.Text)
	b.runner.Run(ctx, req, sink,
		proofread.WithLanguage(lang),
		proofread.WithLogAttrs("run_id", uuid.NewString(), "user_id", user.ID, "chat_id", msg.Chat.ID,
			"words", proofread.CountWords(msg.Text)))
}

func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	logger := b.logger.With("user_id", q.From.ID)
	code, ok := strings.CutPrefix(q.Data, callbackLanguagePrefix)
	if !ok {
		_ = b.api.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	lang, ok := b.catalog.Match(code)
	if !ok {
		logger.Warn("unsupported language selected", "code", code)
		_ = b.api.AnswerCallbackQuery(ctx, q.ID, "")
		return
	}
	if err := b.prefs.SetLanguage(ctx, q.From.ID, lang); err != nil {
		logger.Error("store language failed", "error", err)
		_ = b.api.AnswerCallbackQuery(ctx, q.ID, b.catalog.Message(lang, proofread.MessageFailed))
		return
	}

	confirmation := b.catalog.Message(lang, proofread.MessageLanguageSet)
	if err := b.api.AnswerCallbackQuery(ctx, q.ID, confirmation); err != nil {
		logger.Warn("answer callback failed", "error", err)
	}
	if q.Message != nil {
		err := b.api.EditMessageText(ctx, telegram.EditMessageTextParams{
			ChatID:    q.Message.Chat.ID,
			MessageID: q.Message.MessageID,
			Text:      confirmation,
		})
		var apiErr *telegram.APIError
		if err != nil && !(errors.As(err, &apiErr) && apiErr.NotModified()) {
			logger.Warn("edit language message failed", "error", err)
		}
	}
	logger.Info("language set", "language", lang)
}

// language returns the stored preference, else the client locale when
// supported, else the default language.
func (b *Bot) language(ctx context.Context, user *telegram.User) proofread.Language {
	lang, err := b.prefs.Language(ctx, user.ID)
	if err == nil {
		return lang
	}
	if !errors.Is(err, proofread.ErrNotFound) {
		b.logger.Warn("load language failed", "user_id", user.ID, "error", err)
	}
	if lang, ok := b.catalog.Match(user.LanguageCode); ok {
		return lang
	}
	return proofread.DefaultLanguage
}

func (b *Bot) keyboard() *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	for _, lang := range b.catalog.Languages() {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         b.catalog.Name(lang),
			CallbackData: callbackLanguagePrefix + string(lang),
		}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *Bot) send(ctx context.Context, logger *slog.Logger, p telegram.SendMessageParams) {
	if _, err := b.api.SendMessage(ctx, p); err != nil {
		logger.Error("send message failed", "error", err)
	}
}

// acquire claims the user's run slot.
func (b *Bot) acquire(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, busy := b.active[userID]; busy {
		return false
	}
	b.active[userID] = struct{}{}
	return true
}

func (b *Bot) release(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.active, userID)
}

// command returns the bot command of text, without any "@botname" suffix,
// or "" when text is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd)
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
