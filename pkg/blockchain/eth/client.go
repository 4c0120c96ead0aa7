package eth

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/questx-lab/persuade-agent/config"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

var (
	RpcTimeOut = time.Second * 5
)

// A wrapper around eth.client so that we can mock in transferor tests.
type EthClient interface {
	Start(ctx context.Context)

	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	BalanceAt(ctx context.Context, from common.Address, block *big.Int) (*big.Int, error)
}

// Default implementation of ETH client. Since eth RPC often unstable, this client maintains a list
// of different RPC to connect to and uses the ones that is stable to send a transaction.
type defaultEthClient struct {
	chain    string
	interval time.Duration

	clients     []*ethclient.Client
	initialRpcs []string
	rpcs        []string

	lock *sync.RWMutex
}

func NewEthClients(cfg config.ChainConfig) *defaultEthClient {
	return &defaultEthClient{
		chain:       cfg.Chain,
		interval:    cfg.HealthCheckInterval,
		initialRpcs: cfg.Rpcs,
		lock:        &sync.RWMutex{},
	}
}

// Start re-checks the health of all rpcs periodically until ctx is done.
func (c *defaultEthClient) Start(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	go c.loopCheck(ctx)
}

func (c *defaultEthClient) loopCheck(ctx context.Context) {
	for {
		// Jitter so that many agents do not hit the same rpcs at once.
		jitter := time.Duration(rand.Int63n(int64(c.interval)/2 + 1))
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval + jitter):
		}

		c.updateRpcs(ctx)
	}
}

func (c *defaultEthClient) updateRpcs(ctx context.Context) {
	c.lock.RLock()
	oldClients := c.clients
	c.lock.RUnlock()

	rpcs, clients := c.getRpcsHealthiness(ctx, c.initialRpcs)

	c.lock.Lock()
	for _, client := range oldClients {
		client.Close()
	}

	c.rpcs, c.clients = rpcs, clients
	c.lock.Unlock()
}

func (c *defaultEthClient) getRpcsHealthiness(ctx context.Context, allRpcs []string) ([]string, []*ethclient.Client) {
	type healthyNode struct {
		client *ethclient.Client
		rpc    string
		height int64
	}

	nodes := make([]*healthyNode, 0)
	for _, rpc := range allRpcs {
		client, err := ethclient.Dial(rpc)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", rpc, err)
			continue
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, RpcTimeOut)
		header, err := client.HeaderByNumber(timeoutCtx, nil)
		cancel()

		if err != nil || header.Number == nil {
			xcontext.Logger(ctx).Warnf("Rpc %s is unhealthy: %v", rpc, err)
			client.Close()
			continue
		}

		nodes = append(nodes, &healthyNode{client: client, rpc: rpc, height: header.Number.Int64()})
	}

	rpcs := make([]string, 0, len(nodes))
	clients := make([]*ethclient.Client, 0, len(nodes))
	if len(nodes) == 0 {
		return rpcs, clients
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].height > nodes[j].height
	})

	// Only select some nodes within a certain height from the median
	height := nodes[len(nodes)/2].height
	for _, node := range nodes {
		if diff := node.height - height; diff < 5 && diff > -5 {
			rpcs = append(rpcs, node.rpc)
			clients = append(clients, node.client)
		} else {
			node.client.Close()
		}
	}

	xcontext.Logger(ctx).Infof("Healthy rpcs for chain %s: %v", c.chain, rpcs)

	return rpcs, clients
}

func (c *defaultEthClient) getHealthyClient(ctx context.Context) (*ethclient.Client, string) {
	c.lock.RLock()
	empty := len(c.clients) == 0
	c.lock.RUnlock()

	if empty {
		c.updateRpcs(ctx)
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	if len(c.clients) == 0 {
		return nil, ""
	}

	// Pick a random healthy rpc so that the load is spread.
	i := rand.Intn(len(c.clients))
	return c.clients[i], c.rpcs[i]
}

func (c *defaultEthClient) execute(ctx context.Context, f func(client *ethclient.Client, rpc string) (any, error)) (any, error) {
	client, rpc := c.getHealthyClient(ctx)
	if client == nil {
		return nil, fmt.Errorf("no healthy rpc for chain %s", c.chain)
	}

	return f(client, rpc)
}

func (c *defaultEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	header, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.HeaderByNumber(ctx, number)
	})
	if err != nil {
		return nil, err
	}

	return header.(*ethtypes.Header), nil
}

func (c *defaultEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	gas, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, err
	}

	return gas.(*big.Int), nil
}

func (c *defaultEthClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	tip, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.SuggestGasTipCap(ctx)
	})
	if err != nil {
		return nil, err
	}

	return tip.(*big.Int), nil
}

func (c *defaultEthClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	gas, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.EstimateGas(ctx, msg)
	})
	if err != nil {
		return 0, err
	}

	return gas.(uint64), nil
}

func (c *defaultEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return client.PendingNonceAt(ctx, account)
	})
	if err != nil {
		return 0, err
	}

	return nonce.(uint64), nil
}

func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	_, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		return nil, client.SendTransaction(ctx, tx)
	})

	return err
}

func (c *defaultEthClient) BalanceAt(ctx context.Context, from common.Address, block *big.Int) (*big.Int, error) {
	balance, err := c.execute(ctx, func(client *ethclient.Client, rpc string) (any, error) {
		balance, err := client.BalanceAt(ctx, from, block)
		if err == nil && balance != nil && balance.Sign() == 0 {
			xcontext.Logger(ctx).Errorf("Balance is 0 for using URL %s", rpc)
		}

		return balance, err
	})
	if err != nil {
		return nil, err
	}

	return balance.(*big.Int), nil
}
