package net

import "InpaintBoard/internal/state"

type MessageType string

const (
	MessageStroke MessageType = "stroke"
	MessageRemove MessageType = "remove"
	MessageClear  MessageType = "clear"
)

// Message is the JSON frame exchanged between peers.
type Message struct {
	Type MessageType `json:"type"`
	Op   state.Op    `json:"op"`
}

func messageFor(op state.Op) Message {
	switch op.Type {
	case state.OpClearMask:
		return Message{Type: MessageClear, Op: op}
	case state.OpRemoveStroke:
		return Message{Type: MessageRemove, Op: op}
	}
	return Message{Type: MessageStroke, Op: op}
}

// valid reports whether m carries an op its type agrees with.
func (m Message) valid() bool {
	switch m.Type {
	case MessageStroke:
		return m.Op.Type == state.OpInsertStroke && m.Op.Stroke != nil && m.Op.Stroke.ID != ""
	case MessageRemove:
		return m.Op.Type == state.OpRemoveStroke && m.Op.Stroke != nil && m.Op.Stroke.ID != "" && m.Op.Site != ""
	case MessageClear:
		return m.Op.Type == state.OpClearMask && m.Op.Site != ""
	}
	return false
}

// Publisher shares locally finalized ops with peers.
type Publisher interface {
	Publish(op state.Op) error
}
