package messaging

import (
	"fmt"
	"log"

	"dealbot/objects"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// ContentKind discriminates how a message carries its payload
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindPhoto     ContentKind = "photo"
	KindDocument  ContentKind = "document"
	KindVideo     ContentKind = "video"
	KindVoice     ContentKind = "voice"
	KindAudio     ContentKind = "audio"
	KindSticker   ContentKind = "sticker"
	KindVideoNote ContentKind = "video_note"
	KindOther     ContentKind = "other"
)

// Content is a normalized snapshot of an inbound message
type Content struct {
	Kind   ContentKind
	Text   string // message text or media caption
	FileID string
	Length int // video note diameter

	// Source of the original message, used by the opaque forward fallback
	SourceChatID    int64
	SourceMessageID int
}

// HasMedia is true for anything that is not plain text
func (c Content) HasMedia() bool {
	return c.Kind != KindText
}

// SupportsCaption reports whether the target representation can carry text
func (c Content) SupportsCaption() bool {
	switch c.Kind {
	case KindText, KindPhoto, KindDocument, KindVideo, KindVoice, KindAudio:
		return true
	}
	return false
}

// MediaRefs returns the media references to persist for a creative
func (c Content) MediaRefs() []objects.MediaRef {
	if c.FileID == "" {
		return nil
	}
	return []objects.MediaRef{{Kind: string(c.Kind), FileID: c.FileID}}
}

// ContentFromMessage classifies an inbound message
func ContentFromMessage(message *tgbotapi.Message) Content {
	content := Content{
		Text:            message.Text,
		SourceMessageID: message.MessageID,
	}
	if message.Chat != nil {
		content.SourceChatID = message.Chat.ID
	}

	switch {
	case message.Sticker != nil:
		content.Kind = KindSticker
		content.FileID = message.Sticker.FileID
	case message.VideoNote != nil:
		content.Kind = KindVideoNote
		content.FileID = message.VideoNote.FileID
		content.Length = message.VideoNote.Length
	case message.Photo != nil && len(*message.Photo) > 0:
		content.Kind = KindPhoto
		content.FileID = largestPhoto(*message.Photo).FileID
		content.Text = message.Caption
	case message.Document != nil:
		content.Kind = KindDocument
		content.FileID = message.Document.FileID
		content.Text = message.Caption
	case message.Video != nil:
		content.Kind = KindVideo
		content.FileID = message.Video.FileID
		content.Text = message.Caption
	case message.Voice != nil:
		content.Kind = KindVoice
		content.FileID = message.Voice.FileID
		content.Text = message.Caption
	case message.Audio != nil:
		content.Kind = KindAudio
		content.FileID = message.Audio.FileID
		content.Text = message.Caption
	case message.Text != "":
		content.Kind = KindText
	default:
		content.Kind = KindOther
		content.Text = message.Caption
	}

	return content
}

func largestPhoto(photos []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	largest := photos[0]
	for _, photo := range photos[1:] {
		if photo.Width*photo.Height > largest.Width*largest.Height {
			largest = photo
		}
	}
	return largest
}

// Outgoing is the representation of a Content for one recipient. Header is
// only set for kinds that cannot carry a caption; it is sent right before
// Content.
type Outgoing struct {
	Header  *tgbotapi.MessageConfig
	Content tgbotapi.Chattable
}

// BuildOutgoing renders content for chatID. The header is folded into the
// text or caption where the kind supports it. markup may be nil.
func BuildOutgoing(chatID int64, content Content, header string, markup *tgbotapi.InlineKeyboardMarkup) Outgoing {
	var out Outgoing

	if !content.SupportsCaption() && header != "" {
		headerMsg := NewHTMLMessage(chatID, EscapeHTML(header))
		out.Header = &headerMsg
	}

	caption := joinHeader(header, content.Text)

	switch content.Kind {
	case KindText:
		text := EscapeHTML(content.Text)
		if header != "" {
			text = fmt.Sprintf("<b>%s</b>\n\n%s", EscapeHTML(header), text)
		}
		msg := NewHTMLMessage(chatID, text)
		if markup != nil {
			msg.ReplyMarkup = *markup
		}
		out.Content = msg
	case KindPhoto:
		cfg := tgbotapi.NewPhotoShare(chatID, content.FileID)
		cfg.Caption = caption
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindDocument:
		cfg := tgbotapi.NewDocumentShare(chatID, content.FileID)
		cfg.Caption = caption
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindVideo:
		cfg := tgbotapi.NewVideoShare(chatID, content.FileID)
		cfg.Caption = caption
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindVoice:
		cfg := tgbotapi.NewVoiceShare(chatID, content.FileID)
		cfg.Caption = caption
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindAudio:
		cfg := tgbotapi.NewAudioShare(chatID, content.FileID)
		cfg.Caption = caption
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindSticker:
		cfg := tgbotapi.NewStickerShare(chatID, content.FileID)
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	case KindVideoNote:
		cfg := tgbotapi.NewVideoNoteShare(chatID, content.Length, content.FileID)
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		out.Content = cfg
	default:
		// Unknown kinds are forwarded as-is. Forwards cannot carry buttons,
		// so the header (always present here) takes them.
		if out.Header == nil {
			headerMsg := NewHTMLMessage(chatID, EscapeHTML(header))
			out.Header = &headerMsg
		}
		if markup != nil {
			out.Header.ReplyMarkup = *markup
		}
		out.Content = tgbotapi.NewForward(chatID, content.SourceChatID, content.SourceMessageID)
	}

	return out
}

func joinHeader(header, text string) string {
	switch {
	case header == "":
		return text
	case text == "":
		return header
	}
	return header + "\n\n" + text
}

// Sender is the part of the bot API needed to deliver content
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendOutgoing delivers the header (if any) and then the content, returning
// the message that carries the content.
func SendOutgoing(bot Sender, out Outgoing) (tgbotapi.Message, error) {
	if out.Header != nil {
		if _, err := bot.Send(*out.Header); err != nil {
			log.Printf("[MESSAGING] Error sending header to chat %d: %v", out.Header.ChatID, err)
			return tgbotapi.Message{}, err
		}
	}

	sent, err := bot.Send(out.Content)
	if err != nil {
		log.Printf("[MESSAGING] Error sending content: %v", err)
		return tgbotapi.Message{}, err
	}
	return sent, nil
}
