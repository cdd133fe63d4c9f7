package engine

// Phase is the lifecycle phase of a game session
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhaseResolving Phase = "resolving"
	PhaseWon       Phase = "won"

	// Validation constants
	MinGridDimension     = 1
	DefaultMaxCards      = 64
	DefaultMatchReward   = 10
	DefaultMatchDelay    = 0.3
	DefaultMismatchDelay = 1.0
	MaxPendingSelection  = 2
)

// CardSlot is one position of the grid. Only the engine mutates it.
type CardSlot struct {
	Index   int  `json:"index"`
	PairID  int  `json:"pair_id"`
	FaceUp  bool `json:"face_up"`
	Matched bool `json:"matched"`
}

// CardView is the client-facing projection of a CardSlot. Symbol is empty
// while the card is face down so the layout is not leaked.
type CardView struct {
	Index      int    `json:"index"`
	Symbol     string `json:"symbol,omitempty"`
	FaceUp     bool   `json:"face_up"`
	Matched    bool   `json:"matched"`
	Selectable bool   `json:"selectable"`
}

// GameState is a point-in-time view of a session
type GameState struct {
	Phase            Phase      `json:"phase"`
	Rows             int        `json:"rows"`
	Columns          int        `json:"columns"`
	Cards            []CardView `json:"cards"`
	PendingSelection []int      `json:"pending_selection"`
	Score            int        `json:"score"`
	Moves            int        `json:"moves"`
	ElapsedTime      float64    `json:"elapsed_time"` // seconds
	MatchedPairIDs   []int      `json:"matched_pair_ids"`
	TotalPairs       int        `json:"total_pairs"`
	Generation       uint64     `json:"generation"`
	Message          string     `json:"message"`
	Victory          bool       `json:"victory"`
	ConfigName       string     `json:"config_name"`

	// RestoredPairIDs holds the matched history of the snapshot this game
	// was loaded from. It is informational only.
	RestoredPairIDs []int `json:"restored_pair_ids,omitempty"`
}

// EventType identifies a game event
type EventType string

const (
	EventNewGame  EventType = "new_game"
	EventLoaded   EventType = "loaded"
	EventFlip     EventType = "flip"
	EventMatch    EventType = "match"
	EventMismatch EventType = "mismatch"
	EventResolved EventType = "resolved"
	EventWon      EventType = "won"
)

// GameEvent is emitted by the engine for every observable transition
type GameEvent struct {
	Type        EventType `json:"type"`
	Message     string    `json:"message,omitempty"`
	Cards       []int     `json:"cards,omitempty"`
	PairID      int       `json:"pair_id"`
	Score       int       `json:"score"`
	Moves       int       `json:"moves"`
	ElapsedTime float64   `json:"elapsed_time"`
	Generation  uint64    `json:"generation"`
}
