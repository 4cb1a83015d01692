package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address and public key for the seed",
	RunE:  addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) error {
	kp, err := keyPair()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Address:   ", kp.Address())
	fmt.Fprintln(cmd.OutOrStdout(), "Public Key:", kp.PublicHex())
	fmt.Fprintf(cmd.OutOrStdout(), "Compressed: %x\n", kp.CompressedPublicKey())

	return nil
}
