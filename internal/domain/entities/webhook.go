package entities

import "fmt"

// Message direction relative to the end user.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message types the pipeline cares about. Anything else is replied to with
// the current registration prompt and otherwise ignored.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeDocument = "document"
)

// MediaData is provider-side storage metadata for a media attachment.
type MediaData struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	ByteSize *int64 `json:"byte_size"`
}

// KapsoMetadata is the provider envelope attached to every message.
type KapsoMetadata struct {
	Direction string     `json:"direction"`
	HasMedia  bool       `json:"has_media"`
	MediaURL  string     `json:"media_url,omitempty"`
	MediaData *MediaData `json:"media_data,omitempty"`
}

// MessageText is the text body of a text message.
type MessageText struct {
	Body string `json:"body"`
}

// MessageImage is the image attachment of an image message.
type MessageImage struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	Link     string `json:"link,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// MessageDocument is the file attachment of a document message.
type MessageDocument struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	Link     string `json:"link,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// Message is a single WhatsApp message as delivered by the webhook.
type Message struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Timestamp string           `json:"timestamp"`
	From      string           `json:"from,omitempty"`
	To        string           `json:"to,omitempty"`
	Text      *MessageText     `json:"text,omitempty"`
	Image     *MessageImage    `json:"image,omitempty"`
	Document  *MessageDocument `json:"document,omitempty"`
	Kapso     *KapsoMetadata   `json:"kapso,omitempty"`
}

// IsOutbound reports whether the bot itself sent this message. Outbound
// traffic must never re-enter the pipeline.
func (m *Message) IsOutbound() bool {
	return m.Kapso != nil && m.Kapso.Direction == DirectionOutbound
}

// IsMedia reports whether the message carries an attachment we can process.
func (m *Message) IsMedia() bool {
	return m.Type == MessageTypeImage || m.Type == MessageTypeDocument
}

// TextBody returns the text body, empty for non-text messages.
func (m *Message) TextBody() string {
	if m.Text == nil {
		return ""
	}
	return m.Text.Body
}

// MediaURL returns the downloadable URL for an attachment. Provider-side
// media_url wins over the message's own link/url fields.
func (m *Message) MediaURL() string {
	if m.Kapso != nil && m.Kapso.MediaURL != "" {
		return m.Kapso.MediaURL
	}
	switch m.Type {
	case MessageTypeImage:
		if m.Image != nil {
			if m.Image.Link != "" {
				return m.Image.Link
			}
			return m.Image.URL
		}
	case MessageTypeDocument:
		if m.Document != nil {
			if m.Document.Link != "" {
				return m.Document.Link
			}
			return m.Document.URL
		}
	}
	return ""
}

// Filename returns the attachment filename, generating one when absent.
func (m *Message) Filename() string {
	switch m.Type {
	case MessageTypeImage:
		if m.Kapso != nil && m.Kapso.MediaData != nil && m.Kapso.MediaData.Filename != "" {
			return m.Kapso.MediaData.Filename
		}
		return fmt.Sprintf("image_%s.jpeg", m.ID)
	case MessageTypeDocument:
		if m.Document != nil && m.Document.Filename != "" {
			return m.Document.Filename
		}
		if m.Kapso != nil && m.Kapso.MediaData != nil && m.Kapso.MediaData.Filename != "" {
			return m.Kapso.MediaData.Filename
		}
		return fmt.Sprintf("document_%s.pdf", m.ID)
	}
	return fmt.Sprintf("file_%s", m.ID)
}

// MimeType returns the attachment MIME type with per-type defaults.
func (m *Message) MimeType() string {
	switch m.Type {
	case MessageTypeImage:
		if m.Image != nil && m.Image.MimeType != "" {
			return m.Image.MimeType
		}
		return "image/jpeg"
	case MessageTypeDocument:
		if m.Document != nil && m.Document.MimeType != "" {
			return m.Document.MimeType
		}
		return "application/pdf"
	}
	return "application/octet-stream"
}

// FileSize returns the attachment size in bytes when the provider reported it.
func (m *Message) FileSize() *int64 {
	if m.Kapso != nil && m.Kapso.MediaData != nil {
		return m.Kapso.MediaData.ByteSize
	}
	return nil
}

// Conversation is the provider's conversation envelope. Its phone number is
// considered more reliable than the message's own sender field.
type Conversation struct {
	ID                string `json:"id"`
	ContactName       string `json:"contact_name,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	PhoneNumberID     string `json:"phone_number_id,omitempty"`
	Status            string `json:"status,omitempty"`
	IsNewConversation bool   `json:"is_new_conversation,omitempty"`
}

// WebhookItem is one message+conversation pair.
type WebhookItem struct {
	Message      *Message      `json:"message,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
}

// WebhookPayload accepts both delivery shapes: a batch under "data" and a
// single inlined item.
type WebhookPayload struct {
	Data         []WebhookItem `json:"data,omitempty"`
	Message      *Message      `json:"message,omitempty"`
	Conversation *Conversation `json:"conversation,omitempty"`
}

// First yields the canonical message+conversation pair, taking the first
// item when batched.
func (p *WebhookPayload) First() (*Message, *Conversation) {
	if len(p.Data) > 0 {
		return p.Data[0].Message, p.Data[0].Conversation
	}
	return p.Message, p.Conversation
}

// SenderPhone resolves the sender's phone number, preferring the
// conversation over the message's own from field.
func SenderPhone(msg *Message, conv *Conversation) string {
	if conv != nil && conv.PhoneNumber != "" {
		return conv.PhoneNumber
	}
	if msg != nil {
		return msg.From
	}
	return ""
}
