package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a joinable table.
	RpcQuickMatch = "quick_match"

	// RpcTableToken is the Nakama RPC id clients call to mint a signed table invite.
	RpcTableToken = "table_token"

	// MatchNameCallBreak is the authoritative match handler name registered with Nakama.
	MatchNameCallBreak = "callbreak_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpPlaceBid     int64 = 2
	OpPlayCard     int64 = 3
	OpRequestScore int64 = 4
	OpRequestReset int64 = 5

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpHandDealt      int64 = 103 // send privately
	OpBiddingStarted int64 = 104
	OpBidPlaced      int64 = 105
	OpPlayingStarted int64 = 106
	OpCardPlayed     int64 = 107
	OpTrickResolved  int64 = 108
	OpTurn           int64 = 109
	OpGameEnded      int64 = 110
	OpSessionReset   int64 = 111
	OpScoreboard     int64 = 112
	OpGameError      int64 = 120
)
