// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time `json:"date"`
	ProtocolVersion string    `json:"version"`       // Version stamped into every block header.
	Difficulty      float64   `json:"difficulty"`    // Recorded in every block header for display.
	MiningReward    uint64    `json:"mining_reward"` // Reward paid to the miner of a block.
}

// Default returns the protocol constants used when no genesis file is
// provided.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ProtocolVersion: "0x20e00000",
		Difficulty:      31251101365711.12,
		MiningReward:    6,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. An empty path returns the
// default values.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if genesis.ProtocolVersion == "" {
		return Genesis{}, errors.New("genesis: version is required")
	}

	return genesis, nil
}
