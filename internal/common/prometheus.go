package common

import "github.com/prometheus/client_golang/prometheus"

const (
	RepliesProcessedTotal     = "persuade_replies_processed_total"
	ReplyEvaluationFailure    = "persuade_reply_evaluation_failure"
	ChallengesPostedTotal     = "persuade_challenges_posted_total"
	RewardDisbursementTotal   = "persuade_reward_disbursement_total"
	ExternalCallFailure       = "persuade_external_call_failure"
	EvaluationDurationSeconds = "persuade_evaluation_duration_seconds"
	ChallengeResponsesCount   = "persuade_challenge_responses"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		ChallengeResponsesCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: ChallengeResponsesCount,
			Help: "Number of responses of the current challenge",
		}, []string{"passed"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		RepliesProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RepliesProcessedTotal,
			Help: "Count of all evaluated replies",
		}, []string{"passed"}),
		ReplyEvaluationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ReplyEvaluationFailure,
			Help: "Count of replies which could not be normalized or evaluated",
		}, []string{"stage"}),
		ChallengesPostedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ChallengesPostedTotal,
			Help: "Count of all posted challenges",
		}, []string{"status"}),
		RewardDisbursementTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardDisbursementTotal,
			Help: "Count of reward disbursements",
		}, []string{"status"}),
		ExternalCallFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ExternalCallFailure,
			Help: "Count of failed calls to external services",
		}, []string{"method"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		EvaluationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: EvaluationDurationSeconds,
			Help: "Duration of reply evaluations",
		}, []string{"provider"}),
	}
)
