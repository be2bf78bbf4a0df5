package engine

import "slices"

// The master bidding order is fixed at the first membership sync and only
// ever shrinks or grows at the edges; it is never reshuffled. Each round's
// bidding order is the master order rotated by the round's starting offset
// and filtered to the players who can afford the base price, so the
// first-to-act role rotates fairly across rounds.

// rotatedOrder returns the master order rotated so that index offset comes
// first.
func (s State) rotatedOrder(offset int) []string {
	n := len(s.MasterOrder)
	if n == 0 {
		return nil
	}
	offset = ((offset % n) + n) % n
	out := make([]string, 0, n)
	out = append(out, s.MasterOrder[offset:]...)
	out = append(out, s.MasterOrder[:offset]...)
	return out
}

// eligibleBidders filters a bidding order down to players whose budget
// covers the base price.
func (s State) eligibleBidders(order []string, basePrice int) []string {
	out := make([]string, 0, len(order))
	for _, id := range order {
		if p := s.player(id); p != nil && p.Budget >= basePrice {
			out = append(out, id)
		}
	}
	return out
}

// advanceFrom walks the round's original bidding order cyclically from the
// given player and returns the next id still in the round. Walking the
// original order keeps relative positions stable as players drop out and
// bounds the scan at one full lap.
func (s State) advanceFrom(playerID string) string {
	n := len(s.BiddingOrder)
	if n == 0 || len(s.PlayersInRound) == 0 {
		return ""
	}
	start := slices.Index(s.BiddingOrder, playerID)
	if start < 0 {
		start = 0
	}
	for i := 1; i <= n; i++ {
		candidate := s.BiddingOrder[(start+i)%n]
		if s.inRound(candidate) {
			return candidate
		}
	}
	return ""
}
