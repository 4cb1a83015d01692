package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ProofPrefix is the hex prefix a header hash needs to be a valid proof.
const ProofPrefix = "0000"

// TimeLayout is the layout of the header timestamp. Blocks are stamped
// with minute precision in UTC.
const TimeLayout = "2006-01-02 15:04"

// Set of error variables for block handling.
var (
	ErrNotMined  = errors.New("block has not been mined")
	ErrNoGenesis = errors.New("chain has no genesis block")
	ErrBadLink   = errors.New("previous hash does not match the parent block")
	ErrBadProof  = errors.New("block hash does not satisfy the proof of work")
	ErrBadMerkle = errors.New("merkle root does not match transactions")
)

// progressEvery is how many attempts pass between progress events.
const progressEvery = 100_000

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PreviousHash    string  `json:"previous_hash"` // Hash of the previous block header in the chain.
	Timestamp       string  `json:"time_stamp"`    // Time the block was assembled, minute precision.
	ProtocolVersion string  `json:"version"`       // Protocol version this block was built with.
	Nonce           uint64  `json:"nonce"`         // Value identified to solve the proof of work.
	Difficulty      float64 `json:"difficulty"`    // Recorded for display, the proof target is ProofPrefix.
	MerkleRoot      string  `json:"merkle_root"`   // Merkle tree root hash for the transactions in this block.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[BlockTx]
}

// NewBlock assembles a block for mining. The merkle root is computed from
// the final transaction list and the nonce starts at zero.
func NewBlock(previousHash string, protocolVersion string, difficulty float64, trans []BlockTx) (Block, error) {
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: BlockHeader{
			PreviousHash:    previousHash,
			Timestamp:       time.Now().UTC().Format(TimeLayout),
			ProtocolVersion: protocolVersion,
			Nonce:           0,
			Difficulty:      difficulty,
			MerkleRoot:      tree.RootHex(),
		},
		Trans: tree,
	}

	if _, err := signature.HashValue(nb.Header); err != nil {
		return Block{}, fmt.Errorf("header: %w", err)
	}

	return nb, nil
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PreviousHash    string
	ProtocolVersion string
	Difficulty      float64
	Trans           []BlockTx
	EvHandler       func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	nb, err := NewBlock(args.PreviousHash, args.ProtocolVersion, args.Difficulty, args.Trans)
	if err != nil {
		return Block{}, err
	}

	if err := nb.ProofOfWork(ctx, args.EvHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// ProofOfWork does the work of mining to find a valid hash for the block.
// Pointer semantics are being used since a nonce is being discovered. The
// search only ends when a solution is found or the context is cancelled.
func (b *Block) ProofOfWork(ctx context.Context, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: ProofOfWork: MINING: started: prevBlk[%s]: trans[%d]", b.Header.PreviousHash, len(b.Trans.Leafs))
	defer ev("database: ProofOfWork: MINING: completed")

	b.Header.Nonce = 0

	var attempts uint64
	for {
		attempts++
		if attempts%progressEvery == 0 {
			ev("database: ProofOfWork: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if err := ctx.Err(); err != nil {
			ev("database: ProofOfWork: MINING: CANCELLED: attempts[%d]", attempts)
			return err
		}

		hash := b.Hash()
		if !strings.HasPrefix(hash, ProofPrefix) {
			b.Header.Nonce++
			continue
		}

		ev("database: ProofOfWork: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.Header.PreviousHash, hash, b.Header.Nonce)

		return nil
	}
}

// Hash returns the unique hash for the Block. Only the header is hashed, the
// transactions are committed to through the merkle root.
func (b Block) Hash() string {
	return b.Header.Hash()
}

// Export returns the immutable header and transaction record of a mined
// block.
func (b Block) Export() (BlockData, error) {
	if !ValidProof(b.Header) {
		return BlockData{}, ErrNotMined
	}

	return NewBlockData(b), nil
}

// Hash returns the hash of the header.
func (h BlockHeader) Hash() string {
	return signature.Hash(h)
}

// ValidProof reports whether the hash of the header starts with the
// required proof prefix. Changing any header field invalidates a proof.
func ValidProof(h BlockHeader) bool {
	return strings.HasPrefix(h.Hash(), ProofPrefix)
}

// =============================================================================

// BlockData represents what is exported for a block and what peers exchange.
type BlockData struct {
	Header BlockHeader `json:"headers"`
	Trans  []BlockTx   `json:"transactions"`
}

// NewBlockData constructs the value to export.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Header: block.Header,
		Trans:  block.Trans.Values(),
	}
}

// Hash returns the hash of the block header.
func (bd BlockData) Hash() string {
	return bd.Header.Hash()
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) (Block, error) {
	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: blockData.Header,
		Trans:  tree,
	}

	return nb, nil
}

// =============================================================================

// ValidateChain walks the chain from the block after genesis checking that
// each block links to its parent, that its proof of work holds and that its
// merkle root matches its transactions. The genesis block only needs to be
// present.
func ValidateChain(chain []BlockData, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if len(chain) == 0 {
		return ErrNoGenesis
	}

	for i := 1; i < len(chain); i++ {
		parent := chain[i-1]
		block := chain[i]

		ev("database: ValidateChain: validate: blk[%d]: check: parent hash does match parent block", i)

		parentHash, err := signature.HashValue(parent.Header)
		if err != nil {
			return fmt.Errorf("blk[%d]: parent: %w", i, err)
		}

		if block.Header.PreviousHash != parentHash {
			return fmt.Errorf("blk[%d]: got %s, exp %s: %w", i, block.Header.PreviousHash, parentHash, ErrBadLink)
		}

		ev("database: ValidateChain: validate: blk[%d]: check: block hash has been solved", i)

		if !ValidProof(block.Header) {
			return fmt.Errorf("blk[%d]: hash %s: %w", i, block.Hash(), ErrBadProof)
		}

		ev("database: ValidateChain: validate: blk[%d]: check: merkle root does match transactions", i)

		tree, err := merkle.NewTree(block.Trans)
		if err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}

		if tree.RootHex() != block.Header.MerkleRoot {
			return fmt.Errorf("blk[%d]: got %s, exp %s: %w", i, tree.RootHex(), block.Header.MerkleRoot, ErrBadMerkle)
		}
	}

	return nil
}
