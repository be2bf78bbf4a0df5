package engine

import "slices"

type Role string

const (
	RoleBatsman      Role = "Batsman"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-Rounder"
	RoleWicketKeeper Role = "Wicket-Keeper"
)

// Cricketer is an immutable catalog entry. Never mutated after load.
type Cricketer struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	BasePrice  int    `json:"basePrice"`
	Image      string `json:"image"`
	Overall    int    `json:"overall"`
	BattingOVR int    `json:"battingOVR"`
	BowlingOVR int    `json:"bowlingOVR"`
	FieldingOVR int   `json:"fieldingOVR"`
}

type Player struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	IsHost          bool        `json:"isHost"`
	IsReady         bool        `json:"isReady"`
	ReadyForAuction bool        `json:"readyForAuction"`
	Budget          int         `json:"budget"`
	Squad           []Cricketer `json:"squad"`
}

type Status string

const (
	StatusLobby        Status = "LOBBY"
	StatusPoolView     Status = "AUCTION_POOL_VIEW"
	StatusAuction      Status = "AUCTION"
	StatusRoundOver    Status = "ROUND_OVER"
	StatusSubPoolBreak Status = "SUBPOOL_BREAK"
	StatusGameOver     Status = "GAME_OVER"
)

// UnsoldID is the winner sentinel recorded when a cricketer goes unsold.
const UnsoldID = "UNSOLD"

// HistoryEntry is an append-only record of one resolved round.
// WinningBid is 0 when the cricketer went unsold.
type HistoryEntry struct {
	Cricketer  Cricketer `json:"cricketer"`
	WinningBid int       `json:"winningBid"`
	WinnerID   string    `json:"winnerId"`
}

// State is the canonical game aggregate. It is replicated wholesale to every
// client and fully determines what each client renders. Only Apply produces
// new States; a State handed out in a snapshot must be treated as read-only.
type State struct {
	Status         Status                 `json:"gameStatus"`
	RoomCode       string                 `json:"roomCode"`
	Players        []Player               `json:"players"`
	Catalog        []Cricketer            `json:"cricketersMasterList"`
	SubPools       map[string][]Cricketer `json:"subPools"`
	SubPoolOrder   []string               `json:"subPoolOrder"`
	Queue          []Cricketer            `json:"auctionQueue"`
	OnBlock        *Cricketer             `json:"currentPlayerForAuction"`
	CurrentBid     int                    `json:"currentBid"`
	HighestBidderID string                `json:"highestBidderId"`
	ActivePlayerID string                 `json:"activePlayerId"`
	MasterOrder    []string               `json:"masterBiddingOrder"`
	BiddingOrder   []string               `json:"biddingOrder"`
	PlayersInRound []string               `json:"playersInRound"`
	StartingIndex  int                    `json:"startingPlayerIndex"`
	History        []HistoryEntry         `json:"auctionHistory"`
	SecondRound    bool                   `json:"isSecondRound"`
	StartingBudget int                    `json:"startingBudget"`
	Message        string                 `json:"lastActionMessage"`
}

const DefaultStartingBudget = 5000

// NewState creates the lobby-stage state for a freshly opened room.
func NewState(roomCode string, catalog []Cricketer, startingBudget int) State {
	if startingBudget <= 0 {
		startingBudget = DefaultStartingBudget
	}
	return State{
		Status:         StatusLobby,
		RoomCode:       roomCode,
		Catalog:        catalog,
		Players:        []Player{},
		SubPools:       map[string][]Cricketer{},
		StartingBudget: startingBudget,
		Message:        "Waiting for players...",
	}
}

// clone deep-copies everything a transition may mutate. The catalog is
// immutable and stays shared between snapshots.
func (s State) clone() State {
	c := s
	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Squad = slices.Clone(p.Squad)
		c.Players[i] = p
	}
	c.SubPools = make(map[string][]Cricketer, len(s.SubPools))
	for name, pool := range s.SubPools {
		c.SubPools[name] = slices.Clone(pool)
	}
	c.SubPoolOrder = slices.Clone(s.SubPoolOrder)
	c.Queue = slices.Clone(s.Queue)
	c.MasterOrder = slices.Clone(s.MasterOrder)
	c.BiddingOrder = slices.Clone(s.BiddingOrder)
	c.PlayersInRound = slices.Clone(s.PlayersInRound)
	c.History = slices.Clone(s.History)
	if s.OnBlock != nil {
		onBlock := *s.OnBlock
		c.OnBlock = &onBlock
	}
	return c
}

func (s State) player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// HostID returns the session id of the room host, or "" before the first
// membership sync.
func (s State) HostID() string {
	for _, p := range s.Players {
		if p.IsHost {
			return p.ID
		}
	}
	return ""
}

func (s State) inRound(id string) bool {
	return slices.Contains(s.PlayersInRound, id)
}

// poolOf returns the name of the sub-pool the cricketer was drawn into.
func (s State) poolOf(id int) string {
	for name, pool := range s.SubPools {
		for _, c := range pool {
			if c.ID == id {
				return name
			}
		}
	}
	return ""
}
