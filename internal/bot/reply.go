// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pdiddy/convert-master/internal/flow"
)

// replier sends flow replies to one chat.
type replier struct {
	api    API
	chatID int64
	token  string
}

func (r *replier) Reply(_ context.Context, rep flow.Reply) error {
	_, err := r.api.Send(render(r.chatID, rep))
	return ScrubToken(err, r.token)
}

// render builds the Bot API request for a reply.
func render(chatID int64, rep flow.Reply) tgbotapi.Chattable {
	switch {
	case rep.Photo != "":
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(rep.Photo))
		photo.Caption = rep.Caption
		return photo
	case rep.Document != "":
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(rep.Document))
		doc.Caption = rep.Caption
		return doc
	}

	msg := tgbotapi.NewMessage(chatID, rep.Text)
	switch {
	case len(rep.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(rep.Keyboard))
		for _, row := range rep.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.OneTimeKeyboard = true
		kb.ResizeKeyboard = true
		msg.ReplyMarkup = kb
	case rep.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return msg
}
