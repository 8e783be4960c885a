package app

// DefaultTargetScore is used when a round is created without a target. It matches the
// value lobbies offer by default.
const DefaultTargetScore = 3000
