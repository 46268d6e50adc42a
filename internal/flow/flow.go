// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/convert-master/internal/convert"
	"github.com/pdiddy/convert-master/internal/presentation"
	"github.com/pdiddy/convert-master/pkg/types"
)

// Reply texts.
const (
	MsgWelcome = "Welcome to Convert Master Bot 🤖\n\n" +
		"I can convert documents, images and presentations between formats.\n\n" +
		"👉🏻 For more information type /help"

	MsgHelp = "To use this bot, please enter /convert, select the format you want to convert the file to, " +
		"and then send me the file you want to convert. Type /cancel at any time to stop."

	MsgSelectFormat   = "Select the format you want to convert the file to."
	MsgChooseFormat   = "Please choose a format from the keyboard."
	MsgSendFile       = "Please send a valid document or photo."
	MsgDownloadFailed = "Failed to download the file."
	MsgSlidesPerPage  = "File saved. How many slides per page do you want? (1-%d)"
	MsgBadLayout      = "Please send a whole number between 1 and %d."
	MsgComplete       = "Conversion complete. If you want to convert another file, type /convert."
	MsgFailed         = "Sorry, the conversion failed. To try again, type /convert."
	MsgCancelled      = "Conversion cancelled. To start again, type /convert."
	MsgNothingToStop  = "There is no conversion in progress. To start one, type /convert."
	MsgHint           = "To convert a file, type /convert."
)

// formatLabels orders the keyboard and decorates each target.
var formatLabels = []struct {
	format string
	label  string
}{
	{"pdf", "📄 PDF"},
	{"docx", "📝 DOCX"},
	{"jpg", "🖼️ JPG"},
	{"png", "🖼️ PNG"},
	{"tiff", "🗂️ TIFF"},
}

// photoTargets are sent back as chat photos; everything else is a document.
var photoTargets = map[string]bool{"jpg": true, "png": true}

// Machine runs conversation turns. It holds no per-conversation data and may
// be shared by every chat.
type Machine struct {
	dispatcher  Dispatcher
	fetcher     Fetcher
	downloadDir string
}

// New creates a Machine that downloads uploads into downloadDir.
func New(d Dispatcher, f Fetcher, downloadDir string) *Machine {
	return &Machine{dispatcher: d, fetcher: f, downloadDir: downloadDir}
}

// turn accumulates reply errors for a single Step.
type turn struct {
	ctx    context.Context
	out    Replier
	logger zerolog.Logger
	errs   []error
}

func (t *turn) reply(r Reply) {
	if err := t.out.Reply(t.ctx, r); err != nil {
		t.errs = append(t.errs, fmt.Errorf("sending reply: %w", err))
	}
}

func (t *turn) text(s string) { t.reply(Reply{Text: s}) }

// finish joins the turn's classified error with any delivery failures.
func (t *turn) finish(st State, err error) (State, error) {
	return st, errors.Join(append([]error{err}, t.errs...)...)
}

// Step consumes one user turn and returns the next state. User-facing
// problems are answered in the chat and also returned so the caller can log
// them; they never indicate that the conversation is broken. A terminal
// returned state (Done) should be discarded by the caller.
func (m *Machine) Step(ctx context.Context, st State, in Input, out Replier) (State, error) {
	t := &turn{
		ctx: ctx,
		out: out,
		logger: log.With().
			Int64("chat_id", in.ChatID).
			Str("stage", st.Stage.String()).
			Logger(),
	}

	if in.Command != "" {
		return m.command(t, st, in)
	}

	switch st.Stage {
	case StageAwaitingFormatSelection:
		return m.selectFormat(t, st, in)
	case StageAwaitingFileUpload:
		return m.receiveFile(t, st, in)
	case StageAwaitingPageLayoutParameter:
		return m.receiveLayout(t, st, in)
	}
	t.text(MsgHint)
	return t.finish(State{}, nil)
}

func (m *Machine) command(t *turn, st State, in Input) (State, error) {
	switch strings.ToLower(in.Command) {
	case "start":
		t.text(MsgWelcome)
		return t.finish(st, nil)
	case "help":
		t.text(MsgHelp)
		return t.finish(st, nil)
	case "convert":
		if st.Active() {
			t.logger.Info().Msg("restarting conversation")
		}
		Discard(st)
		t.reply(Reply{Text: MsgSelectFormat, Keyboard: m.keyboard()})
		return t.finish(State{Stage: StageAwaitingFormatSelection}, nil)
	case "cancel":
		if !st.Active() {
			t.text(MsgNothingToStop)
			return t.finish(st, nil)
		}
		Discard(st)
		t.logger.Info().Msg("conversation cancelled")
		t.reply(Reply{Text: MsgCancelled, RemoveKeyboard: true})
		return t.finish(State{Stage: StageCancelled}, nil)
	}
	t.text(MsgHelp)
	return t.finish(st, nil)
}

// keyboard lays out the supported targets two per row.
func (m *Machine) keyboard() [][]string {
	supported := make(map[string]bool)
	for _, f := range m.dispatcher.Targets() {
		supported[f] = true
	}
	var rows [][]string
	var row []string
	for _, fl := range formatLabels {
		if !supported[fl.format] {
			continue
		}
		row = append(row, fl.label)
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// selectFormat stores the second whitespace token of the message. The value
// is checked against the table once the source format is known.
func (m *Machine) selectFormat(t *turn, st State, in Input) (State, error) {
	fields := strings.Fields(in.Text)
	if in.Attachment != nil || len(fields) < 2 {
		t.text(MsgChooseFormat)
		return t.finish(st, fmt.Errorf("%w: expected a format selection", ErrInvalidInput))
	}

	next := st
	next.SelectedFormat = fields[1]
	next.Stage = StageAwaitingFileUpload
	t.logger.Debug().Str("format", next.SelectedFormat).Msg("format selected")
	t.reply(Reply{
		Text:           fmt.Sprintf("Format selected: %s\nNow, please send me the file you want to convert.", next.SelectedFormat),
		RemoveKeyboard: true,
	})
	return t.finish(next, nil)
}

func (m *Machine) receiveFile(t *turn, st State, in Input) (State, error) {
	att := in.Attachment
	if att == nil {
		t.text(MsgSendFile)
		return t.finish(st, fmt.Errorf("%w: missing attachment", ErrInvalidInput))
	}

	source := SourceFormat(*att)
	if source == "" {
		t.text(MsgSendFile)
		return t.finish(st, fmt.Errorf("%w: cannot determine format of %q", ErrInvalidInput, att.FileName))
	}
	if _, err := m.dispatcher.Lookup(source, st.SelectedFormat); err != nil {
		t.text(err.Error())
		return t.finish(st, err)
	}

	// File IDs name a file, not an upload: the same forwarded file arrives in
	// several chats with one ID, so the chat is part of the name.
	dest := filepath.Join(m.downloadDir, fmt.Sprintf("%d-%s.%s", in.ChatID, att.FileID, source))
	if err := m.fetcher.Fetch(t.ctx, *att, dest); err != nil {
		t.logger.Warn().Err(err).Str("file_id", att.FileID).Msg("download failed")
		t.text(MsgDownloadFailed)
		return t.finish(st, fmt.Errorf("downloading %s: %w", att.FileID, err))
	}

	next := st
	next.SourceFormat = source
	next.LocalFilePath = dest
	t.logger.Info().Str("file", dest).Msg("file received")

	if m.dispatcher.NeedsItemsPerPage(source, st.SelectedFormat) {
		next.Stage = StageAwaitingPageLayoutParameter
		t.text(fmt.Sprintf(MsgSlidesPerPage, presentation.MaxPerPage))
		return t.finish(next, nil)
	}
	next.ItemsPerPage = 1
	return m.complete(t, next)
}

func (m *Machine) receiveLayout(t *turn, st State, in Input) (State, error) {
	n, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if in.Attachment != nil || err != nil || n < 1 || n > presentation.MaxPerPage {
		t.text(fmt.Sprintf(MsgBadLayout, presentation.MaxPerPage))
		return t.finish(st, fmt.Errorf("%w: slides per page %q", ErrInvalidInput, in.Text))
	}
	next := st
	next.ItemsPerPage = n
	return m.complete(t, next)
}

// complete converts the downloaded file, sends the result and removes both
// files whatever the outcome.
func (m *Machine) complete(t *turn, st State) (State, error) {
	target := types.NormalizeFormat(st.SelectedFormat)
	output := types.OutputPathFor(st.LocalFilePath, target)
	defer os.Remove(st.LocalFilePath)
	defer os.Remove(output)

	req := types.NewConversionRequest(st.SourceFormat, target, st.LocalFilePath, output, st.ItemsPerPage)
	logger := t.logger.With().
		Str("attempt", uuid.NewString()).
		Str("pair", req.Pair.String()).
		Logger()

	start := time.Now()
	result, err := m.convert(t.ctx, req)
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("conversion failed")
		var unsupported *convert.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			t.text(unsupported.Error())
		} else {
			t.text(MsgFailed)
		}
		return t.finish(State{Stage: StageFailed}, err)
	}
	logger.Info().Int("pages", result.Pages).Dur("duration", time.Since(start)).Msg("conversion complete")

	r := Reply{Caption: caption(result)}
	if photoTargets[target] {
		r.Photo = result.OutputPath
	} else {
		r.Document = result.OutputPath
	}
	t.reply(r)
	t.text(MsgComplete)
	return t.finish(State{Stage: StageCompleted}, nil)
}

func (m *Machine) convert(ctx context.Context, req types.ConversionRequest) (convert.Result, error) {
	c, err := m.dispatcher.Resolve(req)
	if err != nil {
		return convert.Result{}, err
	}
	return c.Convert(ctx)
}

func caption(r convert.Result) string {
	switch {
	case r.Pages == 1:
		return "1 page"
	case r.Pages > 1:
		return fmt.Sprintf("%d pages", r.Pages)
	}
	return ""
}

// SourceFormat names an attachment's format: the file name's extension,
// falling back to the declared MIME type. Photos are always JPEG.
func SourceFormat(att Attachment) string {
	if att.Kind == AttachmentPhoto {
		return "jpg"
	}
	if f := types.FormatOf(att.FileName); f != "" {
		return f
	}
	if att.MimeType == "" {
		return ""
	}
	if mt := mimetype.Lookup(att.MimeType); mt != nil {
		return types.NormalizeFormat(mt.Extension())
	}
	return ""
}
