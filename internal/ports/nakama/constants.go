package nakama

const (
	// RPC ids registered with Nakama.
	RpcCreateRound = "burako_create_round"
	RpcDraw        = "burako_draw"
	RpcSubmitMeld  = "burako_submit_meld"
	RpcAddToMeld   = "burako_add_to_meld"
	RpcDiscard     = "burako_discard"
	RpcPass        = "burako_pass"
	RpcState       = "burako_state"
)

// Storage collections. Objects are owned by the system user so clients cannot write them.
const (
	CollectionGames   = "burako_games"
	CollectionRosters = "burako_rosters"

	systemUserID = ""

	// permissionNoRead keeps stored games hidden from clients; hands are private.
	permissionNoRead     = 0
	permissionNoWrite    = 0
	permissionPublicRead = 2
)

// NotificationCodeGameUpdate is the Nakama notification code of every game update.
const NotificationCodeGameUpdate = 1100

// Nakama runtime env keys.
const (
	EnvTargetScore = "burako_target_score"
	EnvLogLevel    = "burako_log_level"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
	codeInternal           = 13
	codeUnauthenticated    = 16
)
