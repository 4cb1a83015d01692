package cmd

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
)

// entropyBits gives a twelve word mnemonic.
const entropyBits = 128

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new mnemonic seed and print its address",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	mnemonic, kp, err := generate()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Seed:   ", mnemonic)
	fmt.Fprintln(cmd.OutOrStdout(), "Address:", kp.Address())
	fmt.Fprintln(cmd.OutOrStdout(), "WIF:    ", kp.WIF())

	return nil
}

// generate creates a random mnemonic and derives the key pair using the
// mnemonic as the seed string.
func generate() (string, wallet.KeyPair, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", wallet.KeyPair{}, fmt.Errorf("generating entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", wallet.KeyPair{}, fmt.Errorf("generating mnemonic: %w", err)
	}

	kp, err := wallet.DeriveKeyPair(mnemonic)
	if err != nil {
		return "", wallet.KeyPair{}, err
	}

	return mnemonic, kp, nil
}
