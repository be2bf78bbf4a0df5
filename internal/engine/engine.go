package engine

import (
	"errors"
	"fmt"
	"slices"
)

var ErrWrongStatus = errors.New("action not allowed in current game status")
var ErrNotYourTurn = errors.New("it is not your turn")
var ErrNotInRound = errors.New("you are no longer in this round")
var ErrInsufficientFunds = errors.New("insufficient budget for this bid")
var ErrNoActiveRound = errors.New("no cricketer is up for auction")
var ErrRoundInProgress = errors.New("a round is already in progress")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrUnsupportedAction = errors.New("unsupported action")
var ErrNotEnoughCricketers = errors.New("not enough cricketers to form pools")
var ErrLeaderCannotDrop = errors.New("the highest bidder cannot drop from the round")

type ActionType string

const (
	ActDrawPools          ActionType = "DRAW_POOLS"
	ActStartAuction       ActionType = "START_AUCTION"
	ActStartNextRound     ActionType = "START_NEXT_ROUND"
	ActPlaceBid           ActionType = "PLACE_BID"
	ActPassTurn           ActionType = "PASS_TURN"
	ActAutoPass           ActionType = "AUTO_PASS"
	ActDropFromRound      ActionType = "DROP_FROM_ROUND"
	ActEndRound           ActionType = "END_ROUND"
	ActContinueSubPool    ActionType = "CONTINUE_TO_NEXT_SUBPOOL"
	ActEndGame            ActionType = "END_GAME"
	ActSetPlayers         ActionType = "SET_PLAYERS"
	ActToggleReady        ActionType = "TOGGLE_READY"
	ActToggleAuctionReady ActionType = "TOGGLE_READY_FOR_AUCTION"
)

// HostOnly reports whether the action may only be initiated by the host
// session. These are never accepted as client intents from anyone else.
func (t ActionType) HostOnly() bool {
	switch t {
	case ActDrawPools, ActStartAuction, ActContinueSubPool, ActEndGame:
		return true
	}
	return false
}

// Internal reports whether the action is synthesized by the host process
// itself (timers, membership syncs, auto-resolution) and never accepted
// off the wire.
func (t ActionType) Internal() bool {
	switch t {
	case ActStartNextRound, ActAutoPass, ActEndRound, ActSetPlayers:
		return true
	}
	return false
}

// Action is one intent against the state machine. PlayerID is the acting
// player for player-submitted actions; the replication layer re-derives it
// from the authenticated sender before Apply ever sees it.
type Action struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId,omitempty"`
	Players  []Player   `json:"players,omitempty"`
}

// Apply is the transition function: it maps the current state and one action
// to the next state. The input state is never mutated. A returned error is a
// validation rejection; the state comes back unchanged and the caller
// surfaces the error as the next broadcast's message.
func Apply(s State, a Action) (State, error) {
	switch a.Type {
	case ActSetPlayers:
		return applySetPlayers(s, a.Players)
	case ActDrawPools:
		return applyDrawPools(s)
	case ActStartAuction:
		return applyStartAuction(s)
	case ActStartNextRound:
		return applyStartNextRound(s)
	case ActPlaceBid:
		return applyPlaceBid(s, a.PlayerID)
	case ActPassTurn, ActAutoPass:
		return applyPass(s, a.PlayerID)
	case ActDropFromRound:
		return applyDrop(s, a.PlayerID)
	case ActEndRound:
		return applyEndRound(s)
	case ActContinueSubPool:
		return applyContinueSubPool(s)
	case ActEndGame:
		return applyEndGame(s)
	case ActToggleReady:
		return applyToggleReady(s, a.PlayerID, false)
	case ActToggleAuctionReady:
		return applyToggleReady(s, a.PlayerID, true)
	default:
		return s, ErrUnsupportedAction
	}
}

// BidIncrement is a pure step function of the current price.
func BidIncrement(price int) int {
	switch {
	case price < 100:
		return 5
	case price < 200:
		return 10
	case price < 500:
		return 20
	default:
		return 25
	}
}

// ShouldResolveRound reports whether the live round has reached a terminal
// condition: either at most one player remains in the round, or the turn has
// come back around to the current highest bidder unchallenged. The host
// applies END_ROUND as soon as this holds.
func ShouldResolveRound(s State) bool {
	if s.Status != StatusAuction || s.OnBlock == nil {
		return false
	}
	if len(s.PlayersInRound) <= 1 {
		return true
	}
	return s.HighestBidderID != "" && s.ActivePlayerID == s.HighestBidderID
}

func applyPlaceBid(s State, playerID string) (State, error) {
	if s.Status != StatusAuction || s.OnBlock == nil {
		return s, ErrNoActiveRound
	}
	if playerID != s.ActivePlayerID {
		return s, ErrNotYourTurn
	}
	if !s.inRound(playerID) {
		return s, ErrNotInRound
	}
	bidder := s.player(playerID)
	if bidder == nil {
		return s, ErrUnknownPlayer
	}
	price := s.CurrentBid + BidIncrement(s.CurrentBid)
	if bidder.Budget < price {
		return s, ErrInsufficientFunds
	}

	next := s.clone()
	next.CurrentBid = price
	next.HighestBidderID = playerID
	next.ActivePlayerID = next.advanceFrom(playerID)
	next.Message = fmt.Sprintf("%s bids %d for %s", bidder.Name, price, s.OnBlock.Name)
	return next, nil
}

func applyPass(s State, playerID string) (State, error) {
	if s.Status != StatusAuction || s.OnBlock == nil {
		return s, ErrNoActiveRound
	}
	if playerID != s.ActivePlayerID {
		return s, ErrNotYourTurn
	}
	if !s.inRound(playerID) {
		return s, ErrNotInRound
	}
	passer := s.player(playerID)
	if passer == nil {
		return s, ErrUnknownPlayer
	}

	next := s.clone()
	next.ActivePlayerID = next.advanceFrom(playerID)
	next.Message = fmt.Sprintf("%s passes", passer.Name)
	return next, nil
}

func applyDrop(s State, playerID string) (State, error) {
	if s.Status != StatusAuction || s.OnBlock == nil {
		return s, ErrNoActiveRound
	}
	if !s.inRound(playerID) {
		return s, ErrNotInRound
	}
	// The leader dropping would orphan the high bid; END_ROUND credits the
	// highest bidder, who therefore must stay in the round until resolution.
	if playerID == s.HighestBidderID {
		return s, ErrLeaderCannotDrop
	}
	dropper := s.player(playerID)
	if dropper == nil {
		return s, ErrUnknownPlayer
	}

	next := s.clone()
	next.PlayersInRound = slices.DeleteFunc(next.PlayersInRound, func(id string) bool {
		return id == playerID
	})
	if playerID == next.ActivePlayerID && len(next.PlayersInRound) > 0 {
		next.ActivePlayerID = next.advanceFrom(playerID)
	}
	next.Message = fmt.Sprintf("%s drops out of the round", dropper.Name)
	return next, nil
}

func applyEndRound(s State) (State, error) {
	if s.Status != StatusAuction || s.OnBlock == nil {
		return s, ErrNoActiveRound
	}

	next := s.clone()
	item := *next.OnBlock

	winnerID := next.HighestBidderID
	price := next.CurrentBid
	if winnerID == "" && len(next.PlayersInRound) == 1 {
		// Last bidder standing wins uncontested at the current price,
		// which is still the base price when nobody has bid.
		winnerID = next.PlayersInRound[0]
	}

	// Re-validate affordability at resolution time. A winner whose budget
	// no longer covers the price downgrades the result to unsold instead
	// of going negative.
	winner := next.player(winnerID)
	if winner == nil || winner.Budget < price {
		winnerID = ""
	}

	if winnerID == "" {
		next.History = append(next.History, HistoryEntry{Cricketer: item, WinningBid: 0, WinnerID: UnsoldID})
		next.Message = fmt.Sprintf("%s goes unsold", item.Name)
	} else {
		winner.Budget -= price
		winner.Squad = append(winner.Squad, item)
		next.History = append(next.History, HistoryEntry{Cricketer: item, WinningBid: price, WinnerID: winnerID})
		next.Message = fmt.Sprintf("%s sold to %s for %d", item.Name, winner.Name, price)
	}

	next.Status = StatusRoundOver
	next.clearRound()
	return next, nil
}

func applyContinueSubPool(s State) (State, error) {
	if s.Status != StatusSubPoolBreak {
		return s, ErrWrongStatus
	}
	next := s.clone()
	next.Status = StatusAuction
	next.clearRound()
	for i := range next.Players {
		next.Players[i].ReadyForAuction = false
	}
	next.Message = "Next sub-pool starting..."
	return next, nil
}

func applyEndGame(s State) (State, error) {
	next := s.clone()
	next.Status = StatusGameOver
	next.clearRound()
	next.Message = "The auction has ended."
	return next, nil
}

func applyToggleReady(s State, playerID string, forAuction bool) (State, error) {
	if s.player(playerID) == nil {
		return s, ErrUnknownPlayer
	}
	next := s.clone()
	p := next.player(playerID)
	if forAuction {
		p.ReadyForAuction = !p.ReadyForAuction
	} else {
		p.IsReady = !p.IsReady
	}
	return next, nil
}

// applySetPlayers merges a fresh membership snapshot from the directory.
// Existing players keep their budget, squad, and auction-ready flag; new
// players start with the room's starting budget and are appended to the
// master bidding order, which is otherwise never reordered.
func applySetPlayers(s State, incoming []Player) (State, error) {
	next := s.clone()

	merged := make([]Player, 0, len(incoming))
	for _, in := range incoming {
		if existing := s.player(in.ID); existing != nil {
			in.Budget = existing.Budget
			in.Squad = slices.Clone(existing.Squad)
			// The directory only knows lobby readiness; the auction-ready
			// flag is engine state and survives roster pushes.
			in.ReadyForAuction = existing.ReadyForAuction
		} else {
			in.Budget = next.StartingBudget
			in.Squad = []Cricketer{}
		}
		merged = append(merged, in)
	}
	next.Players = merged

	present := make(map[string]bool, len(merged))
	for _, p := range merged {
		present[p.ID] = true
	}
	next.MasterOrder = slices.DeleteFunc(next.MasterOrder, func(id string) bool {
		return !present[id]
	})
	known := make(map[string]bool, len(next.MasterOrder))
	for _, id := range next.MasterOrder {
		known[id] = true
	}
	for _, p := range merged {
		if !known[p.ID] {
			next.MasterOrder = append(next.MasterOrder, p.ID)
		}
	}

	// A departed player must not hold up a live round. Prune first so the
	// advance can only land on a surviving in-round player.
	if next.OnBlock != nil {
		next.PlayersInRound = slices.DeleteFunc(next.PlayersInRound, func(id string) bool {
			return !present[id]
		})
		if !present[next.ActivePlayerID] && len(next.PlayersInRound) > 0 {
			next.ActivePlayerID = next.advanceFrom(next.ActivePlayerID)
		}
	}
	return next, nil
}

func (s *State) clearRound() {
	s.OnBlock = nil
	s.CurrentBid = 0
	s.HighestBidderID = ""
	s.ActivePlayerID = ""
	s.BiddingOrder = nil
	s.PlayersInRound = nil
}
