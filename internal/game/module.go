package game

import "encoding/json"

// State is a module's game state, opaque to the mediator. Modules
// guarantee it is a tree of plain scalars, mappings and ordered
// sequences so it survives JSON snapshotting.
type State any

// Module is the interface a game implementation exposes to the table
// mediator. Game options (blinds, stacks, seeds) bind at module
// construction; the mediator never sees them.
type Module interface {
	// InitialState builds the lobby state for the given players in
	// seat order.
	InitialState(players []string) (State, error)

	// ApplyAction applies one player action and returns the resulting
	// state. On error the input state is unchanged and must remain the
	// current state.
	ApplyAction(st State, playerID string, act Action) (State, error)

	// PublicView projects the state for the shared display. It must
	// not contain hidden information.
	PublicView(st State) any

	// PlayerView projects the state for one seat: the public view plus
	// that seat's private cards and legal actions.
	PlayerView(st State, playerID string) any

	// IsGameOver reports whether at most one seat still has chips.
	IsGameOver(st State) bool

	// Result returns the latest hand or game result, if any.
	Result(st State) (*Result, bool)
}

// Result summarizes a finished hand or game
type Result struct {
	Winners []string       `json:"winners"`
	Awards  map[string]int `json:"awards,omitempty"`
	Summary string         `json:"summary"`
}

// Snapshot is the persistence envelope handed to an external store.
// State round-trips through JSON by the Module's State guarantee.
type Snapshot struct {
	GameID      string          `json:"gameId"`
	GameVersion string          `json:"gameVersion"`
	State       json.RawMessage `json:"state"`
}

// NewSnapshot wraps a state for persistence
func NewSnapshot(gameID, gameVersion string, st State) (Snapshot, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{GameID: gameID, GameVersion: gameVersion, State: data}, nil
}
