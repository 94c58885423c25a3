package domain

// RoomName identifies a room for the lifetime of the process.
type RoomName string

const DefaultRoom RoomName = "general"

// RoomCapacity is the number of recent envelopes a room keeps for its subscribers.
const RoomCapacity = 100

// ResolveRoom falls back to the default room when nothing was requested.
func ResolveRoom(requested string) RoomName {
	if requested == "" {
		return DefaultRoom
	}
	return RoomName(requested)
}

func (r RoomName) String() string {
	return string(r)
}

// RoomStats is a point-in-time view of one room.
type RoomStats struct {
	Name        RoomName `json:"name"`
	Subscribers int      `json:"subscribers"`
	Published   uint64   `json:"published"`
}

// RegistryStats is a point-in-time view of every room and of presence.
type RegistryStats struct {
	Rooms   []RoomStats `json:"rooms"`
	Members int         `json:"members"`
}
