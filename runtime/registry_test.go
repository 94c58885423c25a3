package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreate_SingletonUnderConcurrency(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)
	const callers = 64

	// Given N callers racing for the same unseen room
	results := make([]contract.Broadcaster, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = registry.GetOrCreate("general")
		}(i)
	}
	close(start)
	wg.Wait()

	// Then exactly one endpoint exists and everyone got it
	for _, got := range results {
		req.Same(results[0], got)
	}
	req.Len(registry.Stats().Rooms, 1)
}

func TestRegistry_GetOrCreate_DistinctRooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)

	general := registry.GetOrCreate("general")
	random := registry.GetOrCreate("random")

	req.NotSame(general, random)
	req.Same(general, registry.GetOrCreate("general"))

	stats := registry.Stats()
	req.Len(stats.Rooms, 2)
	req.Equal(domain.RoomName("general"), stats.Rooms[0].Name)
	req.Equal(domain.RoomName("random"), stats.Rooms[1].Name)
}

func TestRegistry_Presence(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)
	subjectID := uuid.NewString()

	// Given no user is connected
	_, ok := registry.RemoveMember(subjectID)
	req.False(ok)

	// When a user joins
	registry.AddMember(subjectID, "User_a")

	// Then it is present
	user, ok := registry.Member(subjectID)
	req.True(ok)
	req.Equal(domain.ConnectedUser{SubjectID: subjectID, DisplayName: "User_a"}, user)
	req.Equal(1, registry.Stats().Members)

	// When it leaves, the entry is returned once
	user, ok = registry.RemoveMember(subjectID)
	req.True(ok)
	req.Equal("User_a", user.DisplayName)

	_, ok = registry.RemoveMember(subjectID)
	req.False(ok)
	req.Zero(registry.Stats().Members)
}

func TestRegistry_AddMember_Overwrites(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)
	subjectID := uuid.NewString()

	// A second connection from the same subject replaces the entry
	registry.AddMember(subjectID, "User_first")
	registry.AddMember(subjectID, "User_second")

	req.Equal(1, registry.Stats().Members)
	user, ok := registry.RemoveMember(subjectID)
	req.True(ok)
	req.Equal("User_second", user.DisplayName)
}

func TestRegistry_RoomsOutliveTheirMembers(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)
	subjectID := uuid.NewString()

	registry.AddMember(subjectID, "User_a")
	room := registry.GetOrCreate("lonely")
	sub := room.Subscribe()

	sub.Close()
	registry.RemoveMember(subjectID)

	// The room is still addressable and is the same endpoint
	req.Same(room, registry.GetOrCreate("lonely"))
	stats := registry.Stats()
	req.Len(stats.Rooms, 1)
	req.Zero(stats.Rooms[0].Subscribers)
}

func TestRegistry_ConcurrentPresence(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(domain.RoomCapacity)

	var removed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.NewString()
			registry.AddMember(id, domain.DisplayName(id))
			registry.GetOrCreate("general")
			if _, ok := registry.RemoveMember(id); ok {
				removed.Add(1)
			}
		}()
	}
	wg.Wait()

	req.Equal(int32(50), removed.Load())
	req.Zero(registry.Stats().Members)
}
