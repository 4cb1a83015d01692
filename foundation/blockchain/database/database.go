// Package database handles the blocks of the ledger. It defines the
// transaction and block records, performs the proof of work, validates
// chains and keeps the chain in a pluggable storage.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by storage when a block does not exist.
var ErrNotFound = errors.New("block does not exist")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// Database manages the chain of blocks. Blocks are only ever appended or
// the chain is replaced as a whole.
type Database struct {
	mu          sync.RWMutex
	latestBlock BlockData
	length      int
	storage     Storage
}

// New constructs a new database over the specified storage. Any blocks the
// storage already holds are validated and loaded.
func New(storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		storage: storage,
	}

	chain, err := db.readChain()
	if err != nil {
		return nil, err
	}

	if len(chain) > 0 {
		if err := ValidateChain(chain, evHandler); err != nil {
			return nil, fmt.Errorf("stored chain: %w", err)
		}

		db.latestBlock = chain[len(chain)-1]
		db.length = len(chain)
	}

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Write appends a mined block to the chain.
func (db *Database) Write(block Block) error {
	blockData, err := block.Export()
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.length > 0 && blockData.Header.PreviousHash != db.latestBlock.Hash() {
		return fmt.Errorf("append: %w", ErrBadLink)
	}

	if err := db.storage.Write(blockData); err != nil {
		return err
	}

	db.latestBlock = blockData
	db.length++

	return nil
}

// Replace swaps the whole chain for the specified one. The caller is
// expected to have validated the chain.
func (db *Database) Replace(chain []BlockData) error {
	if len(chain) == 0 {
		return ErrNoGenesis
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	db.latestBlock = BlockData{}
	db.length = 0

	for _, blockData := range chain {
		if err := db.storage.Write(blockData); err != nil {
			return err
		}
	}

	db.latestBlock = chain[len(chain)-1]
	db.length = len(chain)

	return nil
}

// LatestBlock returns the head of the chain. The boolean is false when the
// chain is empty.
func (db *Database) LatestBlock() (BlockData, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock, db.length > 0
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.length
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(num uint64) (BlockData, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.GetBlock(num)
}

// Chain returns a copy of the full chain in order.
func (db *Database) Chain() ([]BlockData, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.readChain()
}

// readChain walks the storage from the genesis block.
func (db *Database) readChain() ([]BlockData, error) {
	var chain []BlockData

	iter := db.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		chain = append(chain, blockData)
	}

	return chain, nil
}
