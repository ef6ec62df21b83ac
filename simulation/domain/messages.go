package domain

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

type ActorRef string

type DemandId string

// MessageType tags a payload shape for dispatch. Two payloads share a type only
// when their concrete runtime types are identical.
type MessageType string

// Content is the payload of a message. Every payload derived from one
// originating need carries the same demand id.
type Content interface {
	GetId() uuid.UUID
	GetDemandId() DemandId
}

// ContentHeader can be embedded by payload types to implement Content.
type ContentHeader struct {
	Id       uuid.UUID
	DemandId DemandId
}

func NewContentHeader(demandId DemandId) ContentHeader {
	return ContentHeader{Id: uuid.New(), DemandId: demandId}
}

func (h ContentHeader) GetId() uuid.UUID {
	return h.Id
}

func (h ContentHeader) GetDemandId() DemandId {
	return h.DemandId
}

// DeriveHeader builds the header of a content caused by trigger; both share the demand id.
func DeriveHeader(trigger Content) ContentHeader {
	return NewContentHeader(trigger.GetDemandId())
}

func NewDemandId() DemandId {
	return DemandId(uuid.NewString())
}

func TypeOf(content Content) MessageType {
	if content == nil {
		return ""
	}
	return MessageType(typeTag(reflect.TypeOf(content)))
}

func TypeFor[T Content]() MessageType {
	return MessageType(typeTag(reflect.TypeFor[T]()))
}

// typeTag qualifies named types with their full import path, so equally named
// types from different packages get different tags.
func typeTag(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeTag(t.Elem())
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Message is the envelope exchanged between actors. Id is zero until a
// MessageQueue sequences it.
type Message struct {
	Id        uint64
	Sender    ActorRef
	Receiver  ActorRef
	Timestamp time.Duration
	Priority  int32
	Type      MessageType
	Payload   Content
}

func NewMessage(sender ActorRef, receiver ActorRef, timestamp time.Duration, priority int32, payload Content) *Message {
	return &Message{
		Sender:    sender,
		Receiver:  receiver,
		Timestamp: timestamp,
		Priority:  priority,
		Type:      TypeOf(payload),
		Payload:   payload,
	}
}

func (m *Message) GetDemandId() DemandId {
	if m.Payload == nil {
		return ""
	}
	return m.Payload.GetDemandId()
}
