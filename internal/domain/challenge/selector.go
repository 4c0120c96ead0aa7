package challenge

import (
	"github.com/questx-lab/persuade-agent/internal/entity"
)

// Complete marks the challenge completed with appended as the winner if the
// challenge is still open and appended passed. It returns true only on the
// transition.
func Complete(challenge *entity.Challenge, appended *entity.Response) bool {
	if challenge.Completed || appended == nil || !appended.Evaluation.Passed {
		return false
	}

	challenge.Completed = true
	challenge.Winner = appended.Username
	return true
}

// FirstPassing returns the first passing response in arrival order.
func FirstPassing(challenge *entity.Challenge) *entity.Response {
	for _, r := range challenge.Responses {
		if r.Evaluation.Passed {
			return r
		}
	}

	return nil
}

// PassingByUsername returns the first passing response of username.
func PassingByUsername(challenge *entity.Challenge, username string) *entity.Response {
	for _, r := range challenge.Responses {
		if r.Username == username && r.Evaluation.Passed {
			return r
		}
	}

	return nil
}

// WinningResponse returns the response of the recorded winner, preferring the
// first passing one.
func WinningResponse(challenge *entity.Challenge) *entity.Response {
	if challenge.Winner == "" {
		return nil
	}

	return PassingByUsername(challenge, challenge.Winner)
}
