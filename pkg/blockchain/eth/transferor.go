package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/persuade-agent/config"
	interfaze "github.com/questx-lab/persuade-agent/pkg/blockchain/interface"
	"github.com/questx-lab/persuade-agent/pkg/blockchain/types"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"golang.org/x/crypto/sha3"
)

const nativeTransferGas = uint64(21000)

// Transferor sends a reward from the configured account, either in the
// native coin or in an ERC20 token when a token address is configured.
type Transferor struct {
	cfg        config.ChainConfig
	client     EthClient
	dispatcher interfaze.Dispatcher
	privateKey *ecdsa.PrivateKey
	from       common.Address
	chainID    *big.Int
}

func NewTransferor(cfg config.ChainConfig, client EthClient) (*Transferor, error) {
	if cfg.PrivateKey == "" {
		return nil, errors.New("private key is not configured")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	chainID := GetChainID(cfg.Chain, cfg.ChainID)
	if chainID == nil {
		return nil, fmt.Errorf("unknown chain %s", cfg.Chain)
	}

	if cfg.TokenAddress != "" && !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("invalid token address %s", cfg.TokenAddress)
	}

	from := crypto.PubkeyToAddress(privateKey.PublicKey)
	return &Transferor{
		cfg:        cfg,
		client:     client,
		dispatcher: NewEthDispatcher(client, from),
		privateKey: privateKey,
		from:       from,
		chainID:    chainID,
	}, nil
}

func (t *Transferor) From() common.Address {
	return t.from
}

// Transfer sends amount (a decimal string in token units) to address and
// returns the transaction hash.
func (t *Transferor) Transfer(ctx context.Context, address, amount string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid recipient address %s", address)
	}

	value, err := ParseAmount(amount, t.cfg.TokenDecimals)
	if err != nil {
		return "", err
	}

	tx, err := t.buildTransaction(ctx, common.HexToAddress(address), value)
	if err != nil {
		return "", err
	}

	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(t.chainID), t.privateKey)
	if err != nil {
		return "", err
	}

	result := t.dispatcher.Dispatch(ctx, &types.DispatchedTxRequest{Chain: t.cfg.Chain, Tx: signedTx})
	if err := result.Error(); err != nil {
		return "", err
	}

	xcontext.Logger(ctx).Infof("Transferred %s to %s, tx = %s", amount, address, result.TxHash)
	return result.TxHash, nil
}

func (t *Transferor) buildTransaction(ctx context.Context, to common.Address, value *big.Int) (*ethtypes.Transaction, error) {
	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, err
	}

	recipient := to
	var data []byte
	gasLimit := nativeTransferGas
	if t.cfg.TokenAddress != "" {
		recipient = common.HexToAddress(t.cfg.TokenAddress)
		data = GetTransferData(to, value)
		value = big.NewInt(0)

		gasLimit, err = t.client.EstimateGas(ctx, ethereum.CallMsg{
			From: t.from,
			To:   &recipient,
			Data: data,
		})
		if err != nil {
			return nil, err
		}
	}

	if !t.cfg.UseEip1559 {
		gasPrice, err := t.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}

		return ethtypes.NewTransaction(nonce, recipient, value, gasLimit, gasPrice, data), nil
	}

	tipCap, err := t.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}

	header, err := t.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	feeCap := new(big.Int).Add(tipCap, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))
	return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &recipient,
		Value:     value,
		Data:      data,
	}), nil
}

// GetTransferData encodes an ERC20 transfer(address,uint256) call.
func GetTransferData(to common.Address, amount *big.Int) []byte {
	transferFnSignature := []byte("transfer(address,uint256)")
	hash := sha3.NewLegacyKeccak256()
	hash.Write(transferFnSignature)
	methodID := hash.Sum(nil)[:4]

	paddedAddress := common.LeftPadBytes(to.Bytes(), 32)
	paddedAmount := common.LeftPadBytes(amount.Bytes(), 32)

	var data []byte
	data = append(data, methodID...)
	data = append(data, paddedAddress...)
	data = append(data, paddedAmount...)
	return data
}

// ParseAmount converts a positive decimal string into base units with the
// given number of decimals. Amounts finer than one base unit are rejected.
func ParseAmount(amount string, decimals int) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(amount))
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	if r.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %q", amount)
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, decimals)
	}

	return new(big.Int).Set(r.Num()), nil
}
