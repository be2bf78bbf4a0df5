package engine

import (
	"testing"
)

// makeCatalog builds id-sequential cricketers with the given count per role.
func makeCatalog(batsmen, bowlers, allRounders, keepers int) []Cricketer {
	var out []Cricketer
	id := 0
	add := func(role Role, n int) {
		for i := 0; i < n; i++ {
			id++
			out = append(out, Cricketer{ID: id, Name: "C", Role: role, BasePrice: 50})
		}
	}
	add(RoleBatsman, batsmen)
	add(RoleBowler, bowlers)
	add(RoleAllRounder, allRounders)
	add(RoleWicketKeeper, keepers)
	return out
}

func lobbyState(catalog []Cricketer) State {
	s := NewState("TEST01", catalog, DefaultStartingBudget)
	var err error
	s, err = Apply(s, Action{Type: ActSetPlayers, Players: []Player{
		{ID: "p1", Name: "One", IsHost: true},
		{ID: "p2", Name: "Two"},
	}})
	if err != nil {
		panic(err)
	}
	return s
}

func TestDrawPoolsWithExactMinimums(t *testing.T) {
	noShuffle(t)
	s := lobbyState(makeCatalog(17, 15, 20, 8))

	next, err := Apply(s, Action{Type: ActDrawPools})
	if err != nil {
		t.Fatalf("draw failed with exact minimum counts: %v", err)
	}
	if next.Status != StatusPoolView {
		t.Fatalf("status = %s, want AUCTION_POOL_VIEW", next.Status)
	}

	seen := map[int]int{}
	total := 0
	for _, pool := range next.SubPools {
		for _, c := range pool {
			seen[c.ID]++
			total++
		}
	}
	if total != 60 {
		t.Fatalf("pooled %d cricketers, want 60", total)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("cricketer %d appears in %d pools", id, n)
		}
	}
	if len(next.SubPoolOrder) != len(poolSpecs) {
		t.Fatalf("sub-pool order has %d entries, want %d", len(next.SubPoolOrder), len(poolSpecs))
	}
}

func TestDrawPoolsShortfallLeavesStateUnchanged(t *testing.T) {
	cases := []struct {
		name    string
		catalog []Cricketer
	}{
		{"one batsman short", makeCatalog(16, 15, 20, 8)},
		{"one bowler short", makeCatalog(17, 14, 20, 8)},
		{"one all-rounder short", makeCatalog(17, 15, 19, 8)},
		{"one keeper short", makeCatalog(17, 15, 20, 7)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := lobbyState(tc.catalog)
			next, err := Apply(s, Action{Type: ActDrawPools})
			if err == nil {
				t.Fatal("expected shortfall error")
			}
			if next.Status != StatusLobby || len(next.SubPools) != 0 {
				t.Fatalf("partial pools created: status=%s pools=%d", next.Status, len(next.SubPools))
			}
		})
	}
}

func TestStartAuctionBuildsGroupedQueue(t *testing.T) {
	noShuffle(t)
	s := lobbyState(makeCatalog(17, 15, 20, 8))
	s = mustApply(t, s, Action{Type: ActDrawPools})
	s = mustApply(t, s, Action{Type: ActStartAuction})

	if s.Status != StatusAuction || s.OnBlock != nil {
		t.Fatalf("start auction: status=%s onBlock=%v", s.Status, s.OnBlock)
	}
	if len(s.Queue) != 60 {
		t.Fatalf("queue has %d cricketers, want 60", len(s.Queue))
	}

	// The queue must be the concatenation of the sub-pools in sub-pool
	// order: pool membership changes exactly at pool boundaries.
	i := 0
	for _, name := range s.SubPoolOrder {
		for _, want := range s.SubPools[name] {
			if s.Queue[i].ID != want.ID {
				t.Fatalf("queue[%d] = %d, want %d from pool %s", i, s.Queue[i].ID, want.ID, name)
			}
			i++
		}
	}
}

func TestSubPoolBreakBetweenPools(t *testing.T) {
	noShuffle(t)
	s := lobbyState(makeCatalog(17, 15, 20, 8))
	s = mustApply(t, s, Action{Type: ActDrawPools})
	s = mustApply(t, s, Action{Type: ActStartAuction})

	first := s.SubPoolOrder[0]
	poolSize := len(s.SubPools[first])

	// Drive every cricketer of the first pool through uncontested wins by
	// leaving only one player able to afford anything.
	s.Players[0].Budget = 100000
	s.Players[1].Budget = 0
	for i := 0; i < poolSize; i++ {
		s = mustApply(t, s, Action{Type: ActStartNextRound})
		if s.Status != StatusRoundOver {
			t.Fatalf("round %d: status = %s", i, s.Status)
		}
	}

	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.Status != StatusSubPoolBreak {
		t.Fatalf("after finishing %s: status = %s, want SUBPOOL_BREAK", first, s.Status)
	}

	s = mustApply(t, s, Action{Type: ActContinueSubPool})
	if s.Status != StatusAuction || s.OnBlock != nil {
		t.Fatalf("continue: status=%s", s.Status)
	}
	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.Status != StatusRoundOver {
		t.Fatalf("next pool should open immediately, status = %s", s.Status)
	}
	if got := s.poolOf(s.History[len(s.History)-1].Cricketer.ID); got != s.SubPoolOrder[1] {
		t.Fatalf("first cricketer after break from pool %s, want %s", got, s.SubPoolOrder[1])
	}
}

func TestUnsoldCricketersGetSecondChance(t *testing.T) {
	s := lobbyState(nil)
	s.Status = StatusRoundOver
	s.SubPools = map[string][]Cricketer{"Batsmen Group 1": {{ID: 1, Name: "A", BasePrice: 50}}}
	s.SubPoolOrder = []string{"Batsmen Group 1"}
	s.History = []HistoryEntry{
		{Cricketer: Cricketer{ID: 1, Name: "A", BasePrice: 50}, WinnerID: UnsoldID},
	}

	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.Status != StatusSubPoolBreak || !s.SecondRound {
		t.Fatalf("status=%s secondRound=%v, want break into second round", s.Status, s.SecondRound)
	}
	if len(s.Queue) != 1 || s.Queue[0].ID != 1 {
		t.Fatalf("queue = %v, want the unsold cricketer", s.Queue)
	}

	// Exhausting the second-chance queue ends the game for good. Nobody
	// can afford the base price, so the cricketer goes unsold once more.
	s.player("p1").Budget = 0
	s.player("p2").Budget = 0
	s = mustApply(t, s, Action{Type: ActContinueSubPool})
	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.Status != StatusRoundOver {
		t.Fatalf("second-chance round: status=%s", s.Status)
	}
	s = mustApply(t, s, Action{Type: ActStartNextRound})
	if s.Status != StatusGameOver {
		t.Fatalf("status = %s, want GAME_OVER", s.Status)
	}
}

func TestEndGameForcesGameOver(t *testing.T) {
	s := openRoundState(map[string]int{"p1": 1000, "p2": 1000}, 50)
	s = mustApply(t, s, Action{Type: ActEndGame})
	if s.Status != StatusGameOver || s.OnBlock != nil {
		t.Fatalf("status=%s onBlock=%v", s.Status, s.OnBlock)
	}
}
