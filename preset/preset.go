// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package preset

import (
	"fmt"
	"math/big"
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
)

// Config is the genesis parameter block of a fresh auction house. Addresses
// are hex strings so the file stays hand-editable; Resolve turns them into
// typed values.
type Config struct {
	Owner                           string `yaml:"owner"`
	ProceedsReceiver                string `yaml:"proceedsReceiver"`
	TimeBuffer                      uint64 `yaml:"timeBuffer"`
	ReservePrice                    string `yaml:"reservePrice"`
	MinBidIncrementPercentage       uint64 `yaml:"minBidIncrementPercentage"`
	Duration                        uint64 `yaml:"duration"`
	ProceedsReceiverSplitPercentage uint64 `yaml:"proceedsReceiverSplitPercentage"`
}

// Default returns the stock configuration. Owner and proceeds receiver have
// no sensible default and must come from the config file or flags.
func Default() *Config {
	return &Config{
		TimeBuffer:                      300,
		ReservePrice:                    "100",
		MinBidIncrementPercentage:       5,
		Duration:                        86400,
		ProceedsReceiverSplitPercentage: 95,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Resolved is Config with addresses and amounts parsed.
type Resolved struct {
	Owner                           frok.Address
	ProceedsReceiver                frok.Address
	TimeBuffer                      uint64
	ReservePrice                    *big.Int
	MinBidIncrementPercentage       uint64
	Duration                        uint64
	ProceedsReceiverSplitPercentage uint64
}

// Resolve validates and parses the raw config.
func (c *Config) Resolve() (*Resolved, error) {
	owner, err := frok.ParseAddress(c.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	receiver, err := frok.ParseAddress(c.ProceedsReceiver)
	if err != nil {
		return nil, errors.Wrap(err, "proceedsReceiver")
	}
	reserve, ok := new(big.Int).SetString(c.ReservePrice, 10)
	if !ok || reserve.Sign() < 0 {
		return nil, fmt.Errorf("invalid reserve price %q", c.ReservePrice)
	}
	return &Resolved{
		Owner:                           owner,
		ProceedsReceiver:                receiver,
		TimeBuffer:                      c.TimeBuffer,
		ReservePrice:                    reserve,
		MinBidIncrementPercentage:       c.MinBidIncrementPercentage,
		Duration:                        c.Duration,
		ProceedsReceiverSplitPercentage: c.ProceedsReceiverSplitPercentage,
	}, nil
}
