package engine

import (
	"slices"
	"testing"
)

func TestRotatedOrder(t *testing.T) {
	s := State{MasterOrder: []string{"a", "b", "c", "d"}}
	cases := []struct {
		offset int
		want   []string
	}{
		{0, []string{"a", "b", "c", "d"}},
		{1, []string{"b", "c", "d", "a"}},
		{3, []string{"d", "a", "b", "c"}},
		{4, []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		if got := s.rotatedOrder(tc.offset); !slices.Equal(got, tc.want) {
			t.Errorf("rotatedOrder(%d) = %v, want %v", tc.offset, got, tc.want)
		}
	}
}

func TestEligibleBiddersFiltersByBudget(t *testing.T) {
	s := State{Players: []Player{
		{ID: "a", Budget: 100},
		{ID: "b", Budget: 49},
		{ID: "c", Budget: 50},
	}}
	got := s.eligibleBidders([]string{"b", "c", "a"}, 50)
	if !slices.Equal(got, []string{"c", "a"}) {
		t.Fatalf("eligible = %v, want [c a] in rotated order", got)
	}
}

func TestAdvanceSkipsDroppedPlayers(t *testing.T) {
	s := State{
		BiddingOrder:   []string{"a", "b", "c", "d"},
		PlayersInRound: []string{"a", "c"},
	}
	cases := []struct {
		from, want string
	}{
		{"a", "c"}, // b dropped, skip to c
		{"c", "a"}, // d dropped, wrap to a
		{"b", "c"}, // advancing past a dropped player still works
	}
	for _, tc := range cases {
		if got := s.advanceFrom(tc.from); got != tc.want {
			t.Errorf("advanceFrom(%s) = %s, want %s", tc.from, got, tc.want)
		}
	}
}

func TestStartingOffsetRotatesAcrossRounds(t *testing.T) {
	noShuffle(t)
	s := lobbyState(makeCatalog(17, 15, 20, 8))
	s.Players[0].Budget = 1000
	s.Players[1].Budget = 1000
	s = mustApply(t, s, Action{Type: ActDrawPools})
	s = mustApply(t, s, Action{Type: ActStartAuction})

	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.ActivePlayerID != "p1" {
		t.Fatalf("round 1 first to act = %s, want p1", s.ActivePlayerID)
	}
	if s.StartingIndex != 1 {
		t.Fatalf("starting offset = %d, want 1 after the round opens", s.StartingIndex)
	}

	s = mustApply(t, s, Action{Type: ActDropFromRound, PlayerID: "p1"})
	s = mustApply(t, s, Action{Type: ActEndRound})

	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.ActivePlayerID != "p2" {
		t.Fatalf("round 2 first to act = %s, want p2 (rotated)", s.ActivePlayerID)
	}
}
