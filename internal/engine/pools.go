package engine

import (
	"fmt"
	"math/rand"
	"slices"
)

type poolSpec struct {
	Name string
	Role Role
	Size int
}

// The sub-pool layout is a fixed constant of the game. Sizes per role must
// be covered by the catalog or DRAW_POOLS refuses to run.
var poolSpecs = []poolSpec{
	{"Batsmen Group 1", RoleBatsman, 8},
	{"Batsmen Group 2", RoleBatsman, 9},
	{"Bowlers Group 1", RoleBowler, 7},
	{"Bowlers Group 2", RoleBowler, 8},
	{"All-Rounders Group 1", RoleAllRounder, 7},
	{"All-Rounders Group 2", RoleAllRounder, 7},
	{"All-Rounders Group 3", RoleAllRounder, 6},
	{"Wicket-Keepers", RoleWicketKeeper, 8},
}

// UnsoldPoolName is the synthetic sub-pool holding the second-chance run of
// cricketers nobody bought the first time through.
const UnsoldPoolName = "Unsold Players"

// shuffleFn confines all randomness in the engine to the two actions that
// draw pools and build the auction queue. Tests replace it for determinism.
var shuffleFn = func(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

func roleMinimums() map[Role]int {
	mins := map[Role]int{}
	for _, spec := range poolSpecs {
		mins[spec.Role] += spec.Size
	}
	return mins
}

// applyDrawPools partitions the catalog by role and slices shuffled per-role
// lists into the fixed named sub-pools. Any role shortfall aborts the whole
// draw; no partial pool is ever created.
func applyDrawPools(s State) (State, error) {
	if s.Status != StatusLobby {
		return s, ErrWrongStatus
	}

	byRole := map[Role][]Cricketer{}
	for _, c := range s.Catalog {
		byRole[c.Role] = append(byRole[c.Role], c)
	}
	for role, min := range roleMinimums() {
		if len(byRole[role]) < min {
			return s, fmt.Errorf("%w: need %d of role %s, catalog has %d",
				ErrNotEnoughCricketers, min, role, len(byRole[role]))
		}
	}

	next := s.clone()
	next.SubPools = map[string][]Cricketer{}
	next.SubPoolOrder = nil

	taken := map[Role]int{}
	for role := range byRole {
		pool := slices.Clone(byRole[role])
		shuffleFn(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		byRole[role] = pool
	}
	for _, spec := range poolSpecs {
		start := taken[spec.Role]
		next.SubPools[spec.Name] = slices.Clone(byRole[spec.Role][start : start+spec.Size])
		next.SubPoolOrder = append(next.SubPoolOrder, spec.Name)
		taken[spec.Role] = start + spec.Size
	}

	next.Status = StatusPoolView
	next.Message = "Auction pools drawn."
	return next, nil
}

// applyStartAuction randomizes the sub-pool iteration order, shuffles each
// pool's members, and concatenates everything into the auction queue. No
// round is opened yet; the host's progression timer issues the first
// START_NEXT_ROUND.
func applyStartAuction(s State) (State, error) {
	if s.Status != StatusPoolView {
		return s, ErrWrongStatus
	}

	next := s.clone()
	shuffleFn(len(next.SubPoolOrder), func(i, j int) {
		next.SubPoolOrder[i], next.SubPoolOrder[j] = next.SubPoolOrder[j], next.SubPoolOrder[i]
	})
	next.Queue = nil
	for _, name := range next.SubPoolOrder {
		pool := slices.Clone(next.SubPools[name])
		shuffleFn(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		next.SubPools[name] = pool
		next.Queue = append(next.Queue, pool...)
	}

	next.Status = StatusAuction
	next.clearRound()
	next.Message = "The auction is starting!"
	return next, nil
}

// applyStartNextRound advances the auction to the next cricketer. Depending
// on where the queue stands it may instead pause at a sub-pool break, queue
// the unsold second-chance pool, or end the game. A cricketer with fewer
// than two budget-eligible bidders never enters open bidding: with one
// eligible player it is awarded uncontested at base price, with zero it is
// marked unsold, and either way the round never opens.
func applyStartNextRound(s State) (State, error) {
	if s.Status != StatusAuction && s.Status != StatusRoundOver {
		return s, ErrWrongStatus
	}
	if s.OnBlock != nil {
		return s, ErrRoundInProgress
	}

	if len(s.Queue) == 0 {
		return queueExhausted(s)
	}

	// Pause between pools: once the pool of the just-resolved cricketer is
	// fully accounted for in history and the queue has moved on to another
	// pool, the host must explicitly continue.
	if s.Status == StatusRoundOver && !s.SecondRound && len(s.History) > 0 {
		lastPool := s.poolOf(s.History[len(s.History)-1].Cricketer.ID)
		if lastPool != "" && lastPool != s.poolOf(s.Queue[0].ID) && s.poolAuctioned(lastPool) {
			next := s.clone()
			next.Status = StatusSubPoolBreak
			next.clearRound()
			next.Message = fmt.Sprintf("%s complete. Waiting for the host to continue.", lastPool)
			return next, nil
		}
	}

	next := s.clone()
	item := next.Queue[0]
	next.Queue = next.Queue[1:]

	order := next.rotatedOrder(next.StartingIndex)
	eligible := next.eligibleBidders(order, item.BasePrice)

	switch len(eligible) {
	case 0:
		next.History = append(next.History, HistoryEntry{Cricketer: item, WinningBid: 0, WinnerID: UnsoldID})
		next.Status = StatusRoundOver
		next.clearRound()
		next.Message = fmt.Sprintf("No one can afford %s. Unsold.", item.Name)
		return next, nil
	case 1:
		winner := next.player(eligible[0])
		winner.Budget -= item.BasePrice
		winner.Squad = append(winner.Squad, item)
		next.History = append(next.History, HistoryEntry{Cricketer: item, WinningBid: item.BasePrice, WinnerID: winner.ID})
		next.Status = StatusRoundOver
		next.clearRound()
		next.Message = fmt.Sprintf("%s sold to %s for %d (uncontested)", item.Name, winner.Name, item.BasePrice)
		return next, nil
	}

	next.OnBlock = &item
	next.CurrentBid = item.BasePrice
	next.HighestBidderID = ""
	next.BiddingOrder = eligible
	next.PlayersInRound = slices.Clone(eligible)
	next.ActivePlayerID = eligible[0]
	if n := len(next.Players); n > 0 {
		next.StartingIndex = (next.StartingIndex + 1) % n
	}
	next.Status = StatusAuction
	next.Message = fmt.Sprintf("%s is up for auction at base price %d", item.Name, item.BasePrice)
	return next, nil
}

// queueExhausted either queues the one-time second-chance pool of unsold
// cricketers or ends the game.
func queueExhausted(s State) (State, error) {
	next := s.clone()

	if !next.SecondRound {
		var unsold []Cricketer
		for _, h := range next.History {
			if h.WinnerID == UnsoldID {
				unsold = append(unsold, h.Cricketer)
			}
		}
		if len(unsold) > 0 {
			next.SecondRound = true
			next.SubPools[UnsoldPoolName] = unsold
			next.SubPoolOrder = append(next.SubPoolOrder, UnsoldPoolName)
			next.Queue = slices.Clone(unsold)
			next.Status = StatusSubPoolBreak
			next.clearRound()
			next.Message = fmt.Sprintf("Second chance: %d unsold players return to the block.", len(unsold))
			return next, nil
		}
	}

	next.Status = StatusGameOver
	next.clearRound()
	next.Message = "The auction has ended."
	return next, nil
}

// poolAuctioned reports whether every member of the named sub-pool appears
// in the auction history.
func (s State) poolAuctioned(name string) bool {
	auctioned := make(map[int]bool, len(s.History))
	for _, h := range s.History {
		auctioned[h.Cricketer.ID] = true
	}
	for _, c := range s.SubPools[name] {
		if !auctioned[c.ID] {
			return false
		}
	}
	return true
}
