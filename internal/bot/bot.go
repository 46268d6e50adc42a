// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bot connects the conversation flow to the Telegram Bot API.
//
// Updates are routed to a per-chat session. Each session runs its turns one
// at a time on its own goroutine, so independent chats proceed concurrently
// while a single chat never sees two turns at once.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/convert-master/internal/flow"
	"github.com/pdiddy/convert-master/internal/httputil"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// session holds one chat's conversation and its pending turns.
type session struct {
	chatID  int64
	state   flow.State
	queue   []flow.Input
	running bool
}

// Bot routes updates to conversations.
type Bot struct {
	api     API
	machine *flow.Machine
	token   string

	mu       sync.Mutex
	sessions map[int64]*session
	workers  sync.WaitGroup
}

// Option configures a Bot.
type Option func(*Bot)

// WithToken removes token from every transport error the bot reports.
func WithToken(token string) Option {
	return func(b *Bot) { b.token = token }
}

// New creates a Bot. Uploaded files are fetched with client into downloadDir.
func New(api API, d flow.Dispatcher, downloadDir string, client *http.Client, opts ...Option) *Bot {
	if client == nil {
		client = http.DefaultClient
	}
	b := &Bot{
		api:      api,
		sessions: make(map[int64]*session),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.machine = flow.New(d, &fileFetcher{api: api, client: client, token: b.token}, downloadDir)
	return b
}

// Run consumes updates until ctx is cancelled or the channel closes, then
// waits for in-flight turns and discards every live conversation.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	log.Info().Msg("bot is running")
	defer b.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			b.dispatch(ctx, inputFrom(update.Message))
		}
	}
}

// ActiveConversations returns the number of chats waiting for user input.
func (b *Bot) ActiveConversations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.sessions {
		if s.state.Active() {
			n++
		}
	}
	return n
}

// dispatch queues in on its chat's session and starts a worker if none runs.
func (b *Bot) dispatch(ctx context.Context, in flow.Input) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[in.ChatID]
	if !ok {
		s = &session{chatID: in.ChatID}
		b.sessions[in.ChatID] = s
	}
	s.queue = append(s.queue, in)
	if s.running {
		return
	}
	s.running = true
	b.workers.Add(1)
	go b.work(ctx, s)
}

// work drains a session's queue. It exits when the queue is empty and drops
// the session once no conversation is in progress.
func (b *Bot) work(ctx context.Context, s *session) {
	defer b.workers.Done()
	for {
		b.mu.Lock()
		if len(s.queue) == 0 || ctx.Err() != nil {
			s.queue = nil
			s.running = false
			if !s.state.Active() {
				delete(b.sessions, s.chatID)
			}
			b.mu.Unlock()
			return
		}
		in := s.queue[0]
		s.queue = s.queue[1:]
		st := s.state
		b.mu.Unlock()

		next := b.step(ctx, st, in)
		if next.Done() {
			next = flow.State{}
		}

		b.mu.Lock()
		s.state = next
		b.mu.Unlock()
	}
}

// step runs one turn and recovers from any panic so the process keeps
// serving other chats.
func (b *Bot) step(ctx context.Context, st flow.State, in flow.Input) (next flow.State) {
	logger := log.With().Int64("chat_id", in.ChatID).Str("stage", st.Stage.String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("turn panicked")
			flow.Discard(st)
			next = flow.State{}
		}
	}()

	next, err := b.machine.Step(ctx, st, in, &replier{api: b.api, chatID: in.ChatID, token: b.token})
	switch {
	case err == nil:
	case errors.Is(err, flow.ErrInvalidInput):
		logger.Debug().Err(err).Msg("turn rejected")
	default:
		logger.Warn().Err(err).Msg("turn failed")
	}
	return next
}

func (b *Bot) shutdown() {
	b.workers.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.sessions {
		if s.state.Active() {
			log.Info().Int64("chat_id", id).Str("stage", s.state.Stage.String()).Msg("discarding conversation")
		}
		flow.Discard(s.state)
		delete(b.sessions, id)
	}
	log.Info().Msg("bot stopped")
}

// inputFrom maps a chat message onto a flow input. The largest photo size is
// used for photos.
func inputFrom(msg *tgbotapi.Message) flow.Input {
	in := flow.Input{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.IsCommand() {
		in.Command = msg.Command()
		in.Text = msg.CommandArguments()
		return in
	}
	switch {
	case msg.Document != nil:
		in.Attachment = &flow.Attachment{
			Kind:     flow.AttachmentDocument,
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			MimeType: msg.Document.MimeType,
		}
	case len(msg.Photo) > 0:
		in.Attachment = &flow.Attachment{
			Kind:   flow.AttachmentPhoto,
			FileID: msg.Photo[len(msg.Photo)-1].FileID,
		}
	}
	return in
}

// fileFetcher downloads attachments through their Bot API file URL.
type fileFetcher struct {
	api    API
	client *http.Client
	token  string
}

func (f *fileFetcher) Fetch(ctx context.Context, att flow.Attachment, dest string) error {
	url, err := f.api.GetFileDirectURL(att.FileID)
	if err != nil {
		return fmt.Errorf("resolving file %s: %w", att.FileID, ScrubToken(err, f.token))
	}
	return ScrubToken(httputil.Download(ctx, f.client, url, dest), f.token)
}
