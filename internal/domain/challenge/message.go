package challenge

import (
	"fmt"

	"github.com/questx-lab/persuade-agent/internal/entity"
)

func ChallengeMessage(topic, rewardAmount, symbol string) string {
	return fmt.Sprintf("🎯 PERSUADE ME CHALLENGE: Convince me that %s. "+
		"Reply with your most persuasive argument for a chance to win %s %s! #PersuadeMe",
		topic, rewardAmount, symbol)
}

func CongratulationMessage(response *entity.Response, rewardAmount, symbol, txHash string) string {
	return fmt.Sprintf("🎉 Congratulations @%s!\n\nYou have successfully persuaded me and won %s %s reward!"+
		"\n\n⛓️ Transfer transaction sent: %s",
		response.MentionName(), rewardAmount, symbol, txHash)
}

func FeedbackMessage(response *entity.Response) string {
	if response.Evaluation.Passed {
		return fmt.Sprintf("🎉 Congratulations @%s! Your argument was very persuasive, score: %d/10."+
			"\n\nEvaluation: %s\n\nYou have successfully persuaded me and won the challenge! 🏆",
			response.MentionName(), response.Evaluation.Score, response.Evaluation.Reasoning)
	}

	return fmt.Sprintf("Thank you @%s for participating in the challenge! Your argument scored: %d/10."+
		"\n\nEvaluation: %s\n\nKeep up the good work, looking forward to more of your brilliant perspectives! 💪",
		response.MentionName(), response.Evaluation.Score, response.Evaluation.Reasoning)
}
