package transport

import (
	"strconv"
)

// Sender describes the author of an incoming message.
type Sender struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Card     string `json:"card"`
}

// DisplayName prefers the group card over the account nickname.
func (s Sender) DisplayName() string {
	if s.Card != "" {
		return s.Card
	}
	if s.Nickname != "" {
		return s.Nickname
	}
	return strconv.FormatInt(s.UserID, 10)
}

// Event is an incoming chat event. Only group messages are of interest; the
// rest of the event stream is ignored by the dispatcher.
type Event struct {
	Time        int64     `json:"time"`
	SelfID      int64     `json:"self_id"`
	PostType    string    `json:"post_type"`
	MessageType string    `json:"message_type"`
	MessageID   int64     `json:"message_id"`
	GroupID     int64     `json:"group_id"`
	UserID      int64     `json:"user_id"`
	RawMessage  string    `json:"raw_message"`
	Message     []Segment `json:"message"`
	Sender      Sender    `json:"sender"`
}

// IsGroupMessage reports whether the event is a message posted in a group.
func (e *Event) IsGroupMessage() bool {
	return e.PostType == "message" && e.MessageType == "group"
}

// GroupIDString returns the group id in the string form the services use.
func (e *Event) GroupIDString() string {
	return strconv.FormatInt(e.GroupID, 10)
}

// UserIDString returns the sender id in the string form the services use.
func (e *Event) UserIDString() string {
	return strconv.FormatInt(e.UserID, 10)
}

// Mentions returns the ids of users mentioned in the message, in order,
// excluding the whole-group mention.
func (e *Event) Mentions() []string {
	var mentions []string
	for _, seg := range e.Message {
		if seg.Type != "at" {
			continue
		}
		id := seg.Data["qq"]
		if id != "" && id != "all" {
			mentions = append(mentions, id)
		}
	}
	return mentions
}

// PlainText concatenates the text segments of the message.
func (e *Event) PlainText() string {
	var text string
	for _, seg := range e.Message {
		if seg.Type == "text" {
			text += seg.Data["text"]
		}
	}
	return text
}
