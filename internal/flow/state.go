// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package flow implements the chat conversation that collects a target
// format, an uploaded file and, for presentations, a slides-per-page value,
// then runs the conversion and replies with the result.
//
// A conversation is an explicit State value. Step consumes one user turn and
// returns the next State; the caller owns storage of that value and must not
// run two turns of the same conversation at once.
package flow

import (
	"context"
	"errors"
	"os"

	"github.com/pdiddy/convert-master/internal/convert"
	"github.com/pdiddy/convert-master/pkg/types"
)

// Stage identifies where a conversation is.
type Stage string

const (
	// StageIdle means no conversation is in progress.
	StageIdle                        Stage = ""
	StageAwaitingFormatSelection     Stage = "awaiting_format_selection"
	StageAwaitingFileUpload          Stage = "awaiting_file_upload"
	StageAwaitingPageLayoutParameter Stage = "awaiting_page_layout_parameter"
	StageCompleted                   Stage = "completed"
	StageCancelled                   Stage = "cancelled"
	// StageFailed ends a conversation whose conversion raised an error.
	StageFailed                      Stage = "failed"
)

func (s Stage) String() string {
	if s == StageIdle {
		return "idle"
	}
	return string(s)
}

// State is the per-chat conversation record.
type State struct {
	Stage          Stage
	SelectedFormat string // as typed by the user, e.g. "PDF"
	SourceFormat   string // normalised, set once a file is accepted
	LocalFilePath  string // downloaded input, empty until a file is accepted
	ItemsPerPage   int
}

// Active reports whether the conversation is waiting for user input.
func (s State) Active() bool {
	switch s.Stage {
	case StageAwaitingFormatSelection, StageAwaitingFileUpload, StageAwaitingPageLayoutParameter:
		return true
	}
	return false
}

// Done reports whether the conversation reached a terminal stage and its
// state should be discarded.
func (s State) Done() bool {
	switch s.Stage {
	case StageCompleted, StageCancelled, StageFailed:
		return true
	}
	return false
}

// Discard removes any file the conversation downloaded. It is safe to call on
// any state.
func Discard(s State) {
	if s.LocalFilePath != "" {
		os.Remove(s.LocalFilePath)
	}
}

// AttachmentKind distinguishes generic documents from photos.
type AttachmentKind int

const (
	AttachmentDocument AttachmentKind = iota + 1
	AttachmentPhoto
)

// Attachment describes an uploaded file before it is downloaded.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	FileName string
	MimeType string
}

// Input is one user turn. Command is set for slash commands, without the
// slash; otherwise Text and/or Attachment carry the message.
type Input struct {
	ChatID     int64
	Command    string
	Text       string
	Attachment *Attachment
}

// Reply is one outbound message. Exactly one of Text, Photo and Document is
// the body; Photo and Document are local file paths.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
	Photo          string
	Document       string
	Caption        string
}

// Replier delivers replies to the chat a turn came from.
type Replier interface {
	Reply(ctx context.Context, r Reply) error
}

// Fetcher downloads an attachment to dest.
type Fetcher interface {
	Fetch(ctx context.Context, att Attachment, dest string) error
}

// Dispatcher is the subset of the conversion dispatcher the flow uses.
type Dispatcher interface {
	Lookup(source, target string) (convert.Kind, error)
	Resolve(req types.ConversionRequest) (convert.Converter, error)
	NeedsItemsPerPage(source, target string) bool
	Targets() []string
}

// ErrInvalidInput reports a turn whose content does not fit the current
// stage. The stage does not advance.
var ErrInvalidInput = errors.New("invalid input")
