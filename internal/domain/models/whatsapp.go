package models

import "strings"

// WebhookPayload is the part of a WhatsApp Cloud API callback the command
// channel reads: the inbound messages nested under entry[].changes[].value.
// Delivery statuses and contact metadata are ignored.
type WebhookPayload struct {
	Entry []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	Messages []InboundMessage `json:"messages"`
}

// Messages flattens every inbound message of the callback in delivery order.
func (p WebhookPayload) Messages() []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			out = append(out, change.Value.Messages...)
		}
	}
	return out
}

// InboundMessage is one message sent by a user to the business number.
type InboundMessage struct {
	From        string            `json:"from"`
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Text        *TextContent      `json:"text,omitempty"`
	Interactive *InteractiveReply `json:"interactive,omitempty"`
}

// TextContent contains text messages body.
type TextContent struct {
	Body string `json:"body"`
}

// InteractiveReply is the option a user picked from a button or list message.
type InteractiveReply struct {
	ButtonReply *ReplyOption `json:"button_reply,omitempty"`
	ListReply   *ReplyOption `json:"list_reply,omitempty"`
}

// ReplyOption carries the id of a picked option. Option ids are command lines
// such as "/profit".
type ReplyOption struct {
	ID string `json:"id"`
}

// CommandText returns the command line a message carries, or "" for media
// and other message types.
func (m InboundMessage) CommandText() string {
	switch {
	case m.Text != nil:
		return strings.TrimSpace(m.Text.Body)
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.ID
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.ID
	}
	return ""
}
