package client

import "context"

type TokenTransferCaller interface {
	// Transfer sends amount, a decimal string in token units, to address and
	// returns the transaction hash.
	Transfer(ctx context.Context, address, amount string) (string, error)
}
