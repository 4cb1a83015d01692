// This program is a wallet for the proof of work ledger. It derives keys
// from seeds and submits signed transactions to a node.
package main

import "github.com/ardanlabs/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
