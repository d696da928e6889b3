package telegram

import (
	"context"
	"strings"

	"dosug/internal/chunking"
	"dosug/internal/dialogue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// SendText sends text, split into several messages when it is too long.
// Rich text uses Markdown; a chunk Telegram cannot parse is resent once as
// plain text.
func (b *Bot) SendText(ctx context.Context, chatID int64, text string, mode dialogue.Mode) error {
	for _, chunk := range chunking.Split(text, b.maxLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, chunk)
		if mode == dialogue.ModeRich {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}

		_, err := b.api.Send(msg)
		if err != nil && mode == dialogue.ModeRich && isParseError(err) {
			log.WithField("chat_id", chatID).WithError(err).Warn("Markdown rejected, resending as plain text")
			_, err = b.api.Send(tgbotapi.NewMessage(chatID, chunking.StripMarkup(chunk)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SendChoices sends text with one inline button per row.
func (b *Bot) SendChoices(ctx context.Context, chatID int64, text string, choices []dialogue.Choice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data)))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := b.api.Send(msg)
	return err
}

// EditText replaces the text of an earlier message, removing its buttons.
func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}
