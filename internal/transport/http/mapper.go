package http

import (
	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
)

func outboundFromEvent(event core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventUserJoined:
		return proto.Outbound{
			Type: proto.OutboundTypeUserJoined,
			Data: proto.UserEvent{Username: event.Username},
		}
	case core.EventUserLeft:
		return proto.Outbound{
			Type: proto.OutboundTypeUserLeft,
			Data: proto.UserEvent{Username: event.Username},
		}
	case core.EventUserChangedName:
		return proto.Outbound{
			Type: proto.OutboundTypeUserChangedName,
			Data: proto.NameChange{
				OldUsername: event.OldUsername,
				NewUsername: event.NewUsername,
			},
		}
	case core.EventUserCount:
		return proto.Outbound{
			Type: proto.OutboundTypeUserCount,
			Data: proto.UserCount{Count: event.Count},
		}
	case core.EventTyping:
		// Typing payloads are relayed verbatim.
		return proto.Outbound{
			Type: proto.OutboundTypeTyping,
			Data: event.Payload,
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeChatMessage,
			Data: chatMessageFromCore(event.Message),
		}
	case core.EventChatError:
		return proto.Outbound{
			Type: proto.OutboundTypeChatError,
			Data: proto.ChatError{Message: event.Error},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeChatError, Data: proto.ChatError{Message: "unknown event"}}
	}
}

func chatMessageFromCore(m core.Message) proto.ChatMessage {
	return proto.ChatMessage{
		ID:        m.ID,
		Username:  m.Username,
		Content:   m.Content,
		Timestamp: m.Timestamp(),
	}
}
