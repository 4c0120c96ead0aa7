package challenge

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/questx-lab/persuade-agent/internal/client"
	"github.com/questx-lab/persuade-agent/internal/common"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/repository"
	"github.com/questx-lab/persuade-agent/pkg/errorx"
	"github.com/questx-lab/persuade-agent/pkg/logger"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

type DisbursementResult struct {
	Username        string
	Address         string
	Amount          string
	TxHash          string
	Timestamp       time.Time
	AlreadyRewarded bool
}

type Disburser struct {
	challengeRepo  repository.ChallengeRepository
	winnerRepo     repository.WinnerRepository
	identityCaller client.IdentityCaller
	transferCaller client.TokenTransferCaller
	socialCaller   client.SocialCaller
	events         *EventPublisher
	archiver       *Archiver
	tokenSymbol    string
}

func NewDisburser(
	challengeRepo repository.ChallengeRepository,
	winnerRepo repository.WinnerRepository,
	identityCaller client.IdentityCaller,
	transferCaller client.TokenTransferCaller,
	socialCaller client.SocialCaller,
	events *EventPublisher,
	archiver *Archiver,
	tokenSymbol string,
) *Disburser {
	return &Disburser{
		challengeRepo:  challengeRepo,
		winnerRepo:     winnerRepo,
		identityCaller: identityCaller,
		transferCaller: transferCaller,
		socialCaller:   socialCaller,
		events:         events,
		archiver:       archiver,
		tokenSymbol:    tokenSymbol,
	}
}

// Disburse pays the reward of challenge to response at most once. A failed
// transfer is returned and leaves the response unmarked so that it can be
// retried; failures after the transfer are only logged.
func (d *Disburser) Disburse(
	ctx context.Context, challenge *entity.Challenge, response *entity.Response,
) (*DisbursementResult, error) {
	logger := xcontext.Logger(ctx).With("topic", challenge.Topic).
		With("reply_id", response.ReplyID).With("stage", "disburse")

	if response.Rewarded {
		result := &DisbursementResult{
			Username:        response.Username,
			Address:         response.ResolvedAddress,
			Amount:          response.RewardAmount,
			TxHash:          response.RewardTx,
			AlreadyRewarded: true,
		}
		if response.RewardTimestamp != nil {
			result.Timestamp = *response.RewardTimestamp
		}

		return result, nil
	}

	address, err := d.resolveAddress(ctx, challenge, response)
	if err != nil {
		common.PromCounters[common.RewardDisbursementTotal].WithLabelValues("no_address").Inc()
		return nil, err
	}

	amount := challenge.RewardAmount
	logger.Infof("Sending reward of %s to %s (%s)", amount, response.Username, address)

	txHash, err := d.transferCaller.Transfer(ctx, address, amount)
	if err != nil {
		common.PromCounters[common.RewardDisbursementTotal].WithLabelValues("failure").Inc()
		logger.Errorf("Cannot transfer reward to %s: %v", address, err)
		return nil, errorx.New(errorx.TransferFailed, "Cannot transfer reward to %s: %v", address, err)
	}

	common.PromCounters[common.RewardDisbursementTotal].WithLabelValues("success").Inc()

	now := time.Now()
	response.Rewarded = true
	response.RewardAmount = amount
	response.RewardTx = txHash
	response.RewardTimestamp = &now
	response.ResolvedAddress = address
	if err := d.challengeRepo.Save(ctx, challenge); err != nil {
		logger.Errorf("Reward is sent but cannot save challenge: %v", err)
	}

	err = d.winnerRepo.Append(ctx, &entity.WinnerLedgerEntry{
		Username:     response.Username,
		Address:      address,
		Topic:        challenge.Topic,
		Score:        response.Evaluation.Score,
		RewardAmount: amount,
		RewardTx:     txHash,
		Timestamp:    now,
	})
	if err != nil {
		logger.Errorf("Cannot append winner to ledger: %v", err)
	}

	d.congratulate(ctx, logger, challenge, response, txHash)

	d.events.Publish(ctx, challenge, EventRewardDisbursed, RewardEventData{
		Topic:   challenge.Topic,
		Winner:  response.Username,
		Address: address,
		Amount:  amount,
		TxHash:  txHash,
	})
	d.archiver.Archive(ctx, challenge)

	return &DisbursementResult{
		Username:  response.Username,
		Address:   address,
		Amount:    amount,
		TxHash:    txHash,
		Timestamp: now,
	}, nil
}

func (d *Disburser) resolveAddress(
	ctx context.Context, challenge *entity.Challenge, response *entity.Response,
) (string, error) {
	if response.ResolvedAddress != "" {
		return response.ResolvedAddress, nil
	}

	var address string
	var err error
	if response.FID == 0 && (response.Username == "" || response.Username == UnknownUsername) {
		err = errorx.New(errorx.NotFound, "Reply author is unknown")
	} else {
		address, err = d.identityCaller.ResolveAddress(ctx, client.Identity{
			Username: response.Username,
			FID:      response.FID,
		})
		if err == nil && address != "" {
			return address, nil
		}
	}

	if challenge.FallbackAddress == "" {
		return "", errorx.New(errorx.MissingFallbackAddress,
			"Cannot resolve address of %s (%v) and no fallback address is configured", response.Username, err)
	}

	xcontext.Logger(ctx).Errorf("Cannot resolve address of %s, use fallback address %s: %v",
		response.Username, challenge.FallbackAddress, err)
	return challenge.FallbackAddress, nil
}

func (d *Disburser) congratulate(
	ctx context.Context,
	logger logger.Logger,
	challenge *entity.Challenge,
	response *entity.Response,
	txHash string,
) {
	target := response.ReplyID
	if target == "" {
		target = challenge.RootPostID
	}

	if target == "" {
		logger.Errorf("No post to send the congratulation of %s to", response.Username)
		return
	}

	message := CongratulationMessage(response, challenge.RewardAmount, d.tokenSymbol, txHash)
	if _, err := d.socialCaller.Reply(ctx, target, message); err != nil {
		common.PromCounters[common.ExternalCallFailure].WithLabelValues("reply").Inc()
		logger.Errorf("Cannot send congratulation to %s: %v", response.Username, err)
	}
}

// ValidateRewardAmount checks that amount is a positive decimal number.
func ValidateRewardAmount(amount string) error {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok || r.Sign() <= 0 || strings.Contains(amount, "/") {
		return errorx.New(errorx.InvalidRewardAmount, "Invalid reward amount %q", amount)
	}

	return nil
}
