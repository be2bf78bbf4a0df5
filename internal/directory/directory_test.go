package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateJoinAndRosterOrder(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()

	require.NoError(t, d.CreateRoom(ctx, "ABC123", Member{SessionID: "host-1", Name: "Asha"}))
	require.NoError(t, d.JoinRoom(ctx, "ABC123", Member{SessionID: "p-2", Name: "Vik"}))
	require.NoError(t, d.JoinRoom(ctx, "ABC123", Member{SessionID: "p-3", Name: "Ria"}))

	members, err := d.Members(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, "host-1", members[0].SessionID)
	require.True(t, members[0].IsHost)
	require.Equal(t, "p-2", members[1].SessionID)
	require.False(t, members[1].IsHost)
	require.Equal(t, "p-3", members[2].SessionID)
}

func TestCreateDuplicateRoomFails(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()

	require.NoError(t, d.CreateRoom(ctx, "DUP111", Member{SessionID: "h"}))
	require.ErrorIs(t, d.CreateRoom(ctx, "DUP111", Member{SessionID: "h2"}), ErrRoomExists)
}

func TestJoinUnknownRoomFails(t *testing.T) {
	d := NewMemoryDirectory()
	err := d.JoinRoom(context.Background(), "NOPE99", Member{SessionID: "s"})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRejoinRefreshesNameWithoutDuplicating(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()

	require.NoError(t, d.CreateRoom(ctx, "RJ0001", Member{SessionID: "h"}))
	require.NoError(t, d.JoinRoom(ctx, "RJ0001", Member{SessionID: "p-1", Name: "Old"}))
	require.NoError(t, d.JoinRoom(ctx, "RJ0001", Member{SessionID: "p-1", Name: "New"}))

	members, err := d.Members(ctx, "RJ0001")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "New", members[1].Name)
}

func TestToggleReadyFlips(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()
	require.NoError(t, d.CreateRoom(ctx, "RD0001", Member{SessionID: "h"}))

	ready, err := d.ToggleReady(ctx, "RD0001", "h")
	require.NoError(t, err)
	require.True(t, ready)

	ready, err = d.ToggleReady(ctx, "RD0001", "h")
	require.NoError(t, err)
	require.False(t, ready)

	_, err = d.ToggleReady(ctx, "RD0001", "ghost")
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestLeaveRemovesMember(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDirectory()
	require.NoError(t, d.CreateRoom(ctx, "LV0001", Member{SessionID: "h"}))
	require.NoError(t, d.JoinRoom(ctx, "LV0001", Member{SessionID: "p-1", Name: "Vik"}))

	require.NoError(t, d.Leave(ctx, "LV0001", "p-1"))
	require.ErrorIs(t, d.Leave(ctx, "LV0001", "p-1"), ErrMemberNotFound)

	members, err := d.Members(ctx, "LV0001")
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestRosterCarriesStartingBudget(t *testing.T) {
	members := []Member{
		{SessionID: "h", Name: "Asha", IsHost: true, IsReady: true},
		{SessionID: "p", Name: "Vik"},
	}
	players := Roster(members, 5000)
	require.Len(t, players, 2)
	require.Equal(t, "h", players[0].ID)
	require.True(t, players[0].IsHost)
	require.True(t, players[0].IsReady)
	require.Equal(t, 5000, players[1].Budget)
	require.NotNil(t, players[1].Squad)
}
