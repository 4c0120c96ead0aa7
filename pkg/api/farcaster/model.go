package farcaster

type User struct {
	FID               int64             `mapstructure:"fid"`
	Username          string            `mapstructure:"username"`
	DisplayName       string            `mapstructure:"display_name"`
	CustodyAddress    string            `mapstructure:"custody_address"`
	VerifiedAddresses VerifiedAddresses `mapstructure:"verified_addresses"`
}

type VerifiedAddresses struct {
	EthAddresses []string `mapstructure:"eth_addresses"`
}

// PreferredAddress returns the first verified address, or the custody
// address when the user has not verified any.
func (u User) PreferredAddress() string {
	for _, addr := range u.VerifiedAddresses.EthAddresses {
		if addr != "" {
			return addr
		}
	}

	return u.CustodyAddress
}
