// Package cmd contains the wallet commands.
package cmd

import (
	"errors"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var seed string

func init() {
	rootCmd.PersistentFlags().StringVarP(&seed, "seed", "s", "", "Seed the wallet keys are derived from.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple proof of work wallet",
}

// Execute runs the wallet command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// keyPair derives the key pair for the configured seed.
func keyPair() (wallet.KeyPair, error) {
	if seed == "" {
		return wallet.KeyPair{}, errors.New("a seed is required, use --seed")
	}

	return wallet.DeriveKeyPair(seed)
}
