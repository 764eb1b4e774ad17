package network

// Client -> server.
const (
	MsgTypeHeartbeat      = 1
	MsgTypeJoinGame       = 101
	MsgTypeUpdateLocation = 201
	MsgTypeRequestKill    = 202
	MsgTypeRespondToKill  = 203
)

// Server -> client.
const (
	MsgTypeJoined         = 102
	MsgTypeDistanceUpdate = 301
	MsgTypeTargetAlert    = 302
	MsgTypeKillRequest    = 303
	MsgTypeKillConfirmed  = 304
	MsgTypeKillDenied     = 305
	MsgTypeKillError      = 306
	MsgTypePlayerKilled   = 401
	MsgTypeGameStarted    = 402
	MsgTypeGameFinished   = 403
	MsgTypeError          = 500
)
