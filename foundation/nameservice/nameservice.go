// Package nameservice derives wallets from a set of configured seeds and
// provides a name lookup for their addresses.
package nameservice

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[wallet.Address]string
}

// New constructs a name service from entries of the form "name:seed". An
// entry without a name uses the seed itself as the name.
func New(entries []string) (*NameService, error) {
	ns := NameService{
		names: make(map[wallet.Address]string),
	}

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, seed, found := strings.Cut(entry, ":")
		if !found {
			seed = name
		}

		kp, err := wallet.DeriveKeyPair(seed)
		if err != nil {
			return nil, fmt.Errorf("deriving %q: %w", name, err)
		}

		ns.names[kp.Address()] = name
	}

	return &ns, nil
}

// Lookup returns the name for the specified address or the address itself
// when it is unknown.
func (ns *NameService) Lookup(addr wallet.Address) string {
	name, exists := ns.names[addr]
	if !exists {
		return string(addr)
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[wallet.Address]string {
	cpy := make(map[wallet.Address]string, len(ns.names))
	for addr, name := range ns.names {
		cpy[addr] = name
	}
	return cpy
}
