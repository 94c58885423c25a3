// Package domain contains core concepts of the chat system.
// This file defines Message envelopes and their wire encoding.
// Envelopes are immutable once published into a room.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SystemPrefix marks a frame carrying a SystemMessage.
const SystemPrefix = "system:"

type Kind int

const (
	KindUser Kind = iota
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Envelope is either a UserMessage or a SystemMessage.
// SubjectID and DisplayName are empty for system messages.
type Envelope struct {
	Kind        Kind
	SubjectID   string
	DisplayName string
	Body        string
	At          time.Time
}

type userMessage struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type systemMessage struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func NewUserMessage(subjectID, displayName, body string, at time.Time) Envelope {
	return Envelope{
		Kind:        KindUser,
		SubjectID:   subjectID,
		DisplayName: displayName,
		Body:        body,
		At:          at,
	}
}

func NewSystemMessage(body string, at time.Time) Envelope {
	return Envelope{Kind: KindSystem, Body: body, At: at}
}

// JoinedNotice announces a participant entering a room.
func JoinedNotice(displayName string, at time.Time) Envelope {
	return NewSystemMessage(fmt.Sprintf("%s has joined the chat.", displayName), at)
}

// LeftNotice announces a participant leaving a room.
func LeftNotice(displayName string, at time.Time) Envelope {
	return NewSystemMessage(fmt.Sprintf("%s has left the chat.", displayName), at)
}

// Encode renders the envelope as a text frame.
// User messages are bare JSON, system messages carry the SystemPrefix.
func (e Envelope) Encode() (string, error) {
	switch e.Kind {
	case KindUser:
		data, err := json.Marshal(userMessage{
			UserID:    e.SubjectID,
			Username:  e.DisplayName,
			Message:   e.Body,
			Timestamp: e.At.Unix(),
		})
		if err != nil {
			return "", err
		}
		return string(data), nil
	case KindSystem:
		data, err := json.Marshal(systemMessage{Message: e.Body, Timestamp: e.At.Unix()})
		if err != nil {
			return "", err
		}
		return SystemPrefix + string(data), nil
	default:
		return "", fmt.Errorf("unknown envelope kind %d", e.Kind)
	}
}

// DecodeFrame is the inverse of Encode.
func DecodeFrame(frame string) (Envelope, error) {
	if payload, ok := strings.CutPrefix(frame, SystemPrefix); ok {
		var msg systemMessage
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			return Envelope{}, fmt.Errorf("decode system message: %w", err)
		}
		return NewSystemMessage(msg.Message, time.Unix(msg.Timestamp, 0).UTC()), nil
	}

	var msg userMessage
	if err := json.Unmarshal([]byte(frame), &msg); err != nil {
		return Envelope{}, fmt.Errorf("decode user message: %w", err)
	}
	return NewUserMessage(msg.UserID, msg.Username, msg.Message, time.Unix(msg.Timestamp, 0).UTC()), nil
}
