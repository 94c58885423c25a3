package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Registry is the process-wide state shared by every session.
//
// It holds two independent tables, each behind its own lock:
//  1. rooms: room name -> Fanout, created lazily and never removed.
//  2. presence: subject -> ConnectedUser, a flat table across all rooms.
//
// No operation touches both tables, so room lookups never wait on
// presence updates and the reverse.
type Registry struct {
	capacity int

	roomsMu sync.RWMutex
	rooms   map[domain.RoomName]*Fanout

	presenceMu sync.Mutex
	presence   map[string]domain.ConnectedUser
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		rooms:    make(map[domain.RoomName]*Fanout),
		presence: make(map[string]domain.ConnectedUser),
	}
}

// GetOrCreate returns the room's fan-out endpoint, creating it on first use.
// Concurrent callers for the same unseen room all receive the same endpoint:
// the read path is tried first, then the lookup is repeated under the write lock.
func (r *Registry) GetOrCreate(room domain.RoomName) contract.Broadcaster {
	return r.fanout(room)
}

func (r *Registry) fanout(room domain.RoomName) *Fanout {
	r.roomsMu.RLock()
	f, ok := r.rooms[room]
	r.roomsMu.RUnlock()
	if ok {
		return f
	}

	r.roomsMu.Lock()
	defer r.roomsMu.Unlock()
	if f, ok := r.rooms[room]; ok {
		return f
	}
	f = NewFanout(r.capacity)
	r.rooms[room] = f
	return f
}

// AddMember inserts or overwrites the presence entry of a subject.
// A second connection from the same subject replaces the entry; the
// first connection is left untouched.
func (r *Registry) AddMember(subjectID, displayName string) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()

	r.presence[subjectID] = domain.ConnectedUser{SubjectID: subjectID, DisplayName: displayName}
}

// RemoveMember deletes and returns the presence entry of a subject, if any.
func (r *Registry) RemoveMember(subjectID string) (domain.ConnectedUser, bool) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()

	user, ok := r.presence[subjectID]
	if ok {
		delete(r.presence, subjectID)
	}
	return user, ok
}

// Member returns the presence entry of a subject without removing it.
func (r *Registry) Member(subjectID string) (domain.ConnectedUser, bool) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()

	user, ok := r.presence[subjectID]
	return user, ok
}

// Stats takes each lock separately; the result is not a consistent cut across both tables.
func (r *Registry) Stats() domain.RegistryStats {
	r.roomsMu.RLock()
	rooms := lo.MapToSlice(r.rooms, func(name domain.RoomName, f *Fanout) domain.RoomStats {
		return domain.RoomStats{Name: name, Subscribers: f.Subscribers(), Published: f.Published()}
	})
	r.roomsMu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })

	r.presenceMu.Lock()
	members := len(r.presence)
	r.presenceMu.Unlock()

	return domain.RegistryStats{Rooms: rooms, Members: members}
}
