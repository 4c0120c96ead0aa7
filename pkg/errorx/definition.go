package errorx

var (
	ErrNoActiveChallenge = New(NoActiveChallenge, "No active challenge found")
	ErrNoTopics          = New(NoTopics, "No topics configured for challenges")
	ErrNoWinner          = New(NoWinner, "No winning response found")
)
