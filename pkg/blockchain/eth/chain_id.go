package eth

import (
	"math/big"
)

// GetChainID returns the configured chain id, or the well-known id of the
// chain name when the configuration leaves it zero.
func GetChainID(chain string, configured int64) *big.Int {
	if configured != 0 {
		return big.NewInt(configured)
	}

	switch chain {
	case "eth":
		return big.NewInt(1)
	case "goerli-testnet":
		return big.NewInt(5)
	case "binance-testnet":
		return big.NewInt(97)
	case "xdai":
		return big.NewInt(100)
	case "sonic":
		return big.NewInt(146)
	case "fantom-testnet":
		return big.NewInt(4002)
	case "sonic-testnet":
		return big.NewInt(57054)
	case "polygon-testnet":
		return big.NewInt(80001)

	default:
		return nil
	}
}
