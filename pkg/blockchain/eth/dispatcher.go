package eth

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/persuade-agent/pkg/blockchain/types"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

type EthDispatcher struct {
	client EthClient
	from   common.Address
}

func NewEthDispatcher(client EthClient, from common.Address) *EthDispatcher {
	return &EthDispatcher{client: client, from: from}
}

func (d *EthDispatcher) Dispatch(ctx context.Context, request *types.DispatchedTxRequest) *types.DispatchedTxResult {
	tx := request.Tx

	// Check the balance to see if we have enough native token.
	balance, err := d.client.BalanceAt(ctx, d.from, nil)
	if err != nil || balance == nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance for account %s: %v", d.from, err)
		return types.NewDispatchTxError(request, types.ErrGeneric)
	}

	minimum := new(big.Int).Mul(tx.GasFeeCap(), new(big.Int).SetUint64(tx.Gas()))
	minimum = minimum.Add(minimum, tx.Value())
	if minimum.Cmp(balance) > 0 {
		xcontext.Logger(ctx).Errorf("Balance smaller than minimum required for this transaction, "+
			"from = %s, balance = %s, minimum = %s, chain = %s",
			d.from, balance, minimum, request.Chain)
		return types.NewDispatchTxError(request, types.ErrNotEnoughBalance)
	}

	err = d.client.SendTransaction(ctx, tx)
	if err == nil {
		xcontext.Logger(ctx).Infof("Tx is dispatched successfully for chain %s from %s txHash = %s",
			request.Chain, d.from, tx.Hash())
		return types.NewDispatchTxSuccess(request)
	}

	if strings.Contains(err.Error(), "already known") {
		// The same signed tx has been submitted before (e.g. a retry after a
		// timeout). Ethereum does not return error code in its JSON RPC, so
		// we have to rely on string matching.
		return types.NewDispatchTxSuccess(request)
	}

	xcontext.Logger(ctx).Errorf("Failed to dispatch tx: %v", err)
	return types.NewDispatchTxError(request, types.ErrSubmitTx)
}
