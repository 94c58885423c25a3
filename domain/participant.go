// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/samber/lo"

const (
	displayNamePrefix = "User_"
	displayNameLength = 8
)

// ConnectedUser is a presence entry, keyed by subject in the registry.
type ConnectedUser struct {
	SubjectID   string
	DisplayName string
}

// Admission is what an authorized connection request resolves to.
type Admission struct {
	SubjectID   string
	DisplayName string
	Room        RoomName
}

// DisplayName derives a stable label from the subject identifier.
// Two subjects sharing the same first characters share the same label.
func DisplayName(subjectID string) string {
	return displayNamePrefix + lo.Substring(subjectID, 0, displayNameLength)
}
