package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest     Code = 100001
	BadResponse    Code = 100002
	NotFound       Code = 100004
	AlreadyExists  Code = 100006
	Internal       Code = 100007
	Unavailable    Code = 100008
	NotImplemented Code = 100009

	// Configuration codes
	InvalidConfig          Code = 200001
	NoTopics               Code = 200002
	InvalidRewardAmount    Code = 200003
	MissingFallbackAddress Code = 200004

	// Challenge codes
	NoActiveChallenge     Code = 300001
	ActiveChallengeExists Code = 300002
	NoWinner              Code = 300003
	MissingRootPost       Code = 300004

	// Reward codes
	TransferFailed  Code = 400001
	AlreadyRewarded Code = 400002
)
