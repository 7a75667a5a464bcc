package entities

import "testing"

func TestMessage_MediaURL(t *testing.T) {
	withKapso := &Message{
		Type:  MessageTypeImage,
		Image: &MessageImage{Link: "https://cdn.example.com/link.jpg"},
		Kapso: &KapsoMetadata{MediaURL: "https://kapso.example.com/media.jpg"},
	}
	if got := withKapso.MediaURL(); got != "https://kapso.example.com/media.jpg" {
		t.Fatalf("expected kapso media_url to win, got %s", got)
	}

	linkOverURL := &Message{
		Type:  MessageTypeImage,
		Image: &MessageImage{Link: "https://cdn.example.com/link.jpg", URL: "https://cdn.example.com/url.jpg"},
	}
	if got := linkOverURL.MediaURL(); got != "https://cdn.example.com/link.jpg" {
		t.Fatalf("expected link to win over url, got %s", got)
	}

	urlOnly := &Message{
		Type:     MessageTypeDocument,
		Document: &MessageDocument{URL: "https://cdn.example.com/doc.pdf"},
	}
	if got := urlOnly.MediaURL(); got != "https://cdn.example.com/doc.pdf" {
		t.Fatalf("expected document url, got %s", got)
	}

	text := &Message{Type: MessageTypeText, Text: &MessageText{Body: "hola"}}
	if got := text.MediaURL(); got != "" {
		t.Fatalf("expected empty url for text message, got %s", got)
	}
}

func TestMessage_FilenameDefaults(t *testing.T) {
	image := &Message{ID: "wamid.1", Type: MessageTypeImage}
	if got := image.Filename(); got != "image_wamid.1.jpeg" {
		t.Fatalf("unexpected generated image filename: %s", got)
	}

	doc := &Message{ID: "wamid.2", Type: MessageTypeDocument}
	if got := doc.Filename(); got != "document_wamid.2.pdf" {
		t.Fatalf("unexpected generated document filename: %s", got)
	}

	named := &Message{
		ID:       "wamid.3",
		Type:     MessageTypeDocument,
		Document: &MessageDocument{Filename: "factura.pdf"},
	}
	if got := named.Filename(); got != "factura.pdf" {
		t.Fatalf("expected provided filename, got %s", got)
	}

	provider := &Message{
		ID:    "wamid.4",
		Type:  MessageTypeImage,
		Kapso: &KapsoMetadata{MediaData: &MediaData{Filename: "foto.png"}},
	}
	if got := provider.Filename(); got != "foto.png" {
		t.Fatalf("expected provider filename, got %s", got)
	}
}

func TestMessage_MimeTypeDefaults(t *testing.T) {
	image := &Message{Type: MessageTypeImage}
	if got := image.MimeType(); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg default, got %s", got)
	}

	doc := &Message{Type: MessageTypeDocument}
	if got := doc.MimeType(); got != "application/pdf" {
		t.Fatalf("expected application/pdf default, got %s", got)
	}

	explicit := &Message{Type: MessageTypeImage, Image: &MessageImage{MimeType: "image/png"}}
	if got := explicit.MimeType(); got != "image/png" {
		t.Fatalf("expected explicit mime type, got %s", got)
	}

	other := &Message{Type: "audio"}
	if got := other.MimeType(); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %s", got)
	}
}

func TestMessage_IsOutbound(t *testing.T) {
	out := &Message{Kapso: &KapsoMetadata{Direction: DirectionOutbound}}
	if !out.IsOutbound() {
		t.Fatal("expected outbound")
	}
	in := &Message{Kapso: &KapsoMetadata{Direction: DirectionInbound}}
	if in.IsOutbound() {
		t.Fatal("expected inbound")
	}
	bare := &Message{}
	if bare.IsOutbound() {
		t.Fatal("message without provider metadata is not outbound")
	}
}

func TestWebhookPayload_First(t *testing.T) {
	batched := &WebhookPayload{
		Data: []WebhookItem{
			{Message: &Message{ID: "first"}, Conversation: &Conversation{ID: "conv-1"}},
			{Message: &Message{ID: "second"}},
		},
		Message: &Message{ID: "inline"},
	}
	msg, conv := batched.First()
	if msg.ID != "first" || conv.ID != "conv-1" {
		t.Fatalf("expected first batched item, got msg=%s", msg.ID)
	}

	single := &WebhookPayload{Message: &Message{ID: "inline"}, Conversation: &Conversation{ID: "conv-2"}}
	msg, conv = single.First()
	if msg.ID != "inline" || conv.ID != "conv-2" {
		t.Fatalf("expected inline item, got msg=%s", msg.ID)
	}

	empty := &WebhookPayload{}
	msg, conv = empty.First()
	if msg != nil || conv != nil {
		t.Fatal("expected nil message and conversation for empty payload")
	}
}

func TestSenderPhone(t *testing.T) {
	msg := &Message{From: "5491100000001"}
	conv := &Conversation{PhoneNumber: "5491100000002"}

	if got := SenderPhone(msg, conv); got != "5491100000002" {
		t.Fatalf("expected conversation phone to win, got %s", got)
	}
	if got := SenderPhone(msg, &Conversation{}); got != "5491100000001" {
		t.Fatalf("expected message from as fallback, got %s", got)
	}
	if got := SenderPhone(nil, nil); got != "" {
		t.Fatalf("expected empty phone, got %s", got)
	}
}
