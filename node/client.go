// Package node describes the Fuel node's block-streaming interface and the
// wire shapes the scheduler decodes: the paginated reader contract, block
// and transaction/receipt payloads, and an in-memory fake used by the
// scheduler's own tests. No concrete RPC client is implemented here; that
// collaborator lives outside this module.
package node

import "context"

// Direction is the pagination direction a PaginationRequest walks in.
type Direction uint8

const (
	// Forward walks from the cursor towards increasing height, the only
	// direction the scheduler ever requests.
	Forward Direction = iota
	Backward
)

// PaginationRequest asks for up to Limit blocks starting after Cursor (or
// from genesis when Cursor is empty) in Direction.
type PaginationRequest struct {
	Cursor    string
	Limit     int
	Direction Direction
}

// PaginatedResult is a page of T plus the cursor to resume from.
type PaginatedResult[T any] struct {
	Items  []T
	Cursor string
	// HasNext reports whether a further page may be available. False
	// means the caller has reached the node's current chain tip.
	HasNext bool
}

// Client is the paginated block reader the scheduler polls. A production
// implementation calls out to the Fuel GraphQL/RPC node; it is not
// implemented in this module.
type Client interface {
	Blocks(ctx context.Context, req PaginationRequest) (PaginatedResult[BlockData], error)
}

// BlockData is one produced block: header fields plus its transactions.
type BlockData struct {
	ID           string
	Height       uint32
	Time         int64
	Producer     string
	Transactions []Transaction
}

// TransactionKind classifies a Transaction's variant-specific fields.
type TransactionKind uint8

const (
	TxScript TransactionKind = iota
	TxCreate
	TxMint
)

// Transaction carries the fields common to every variant plus the ones
// specific to Kind; fields that don't apply to a given Kind are left at
// their zero value, mirroring the original's tagged-union encoding.
type Transaction struct {
	Kind     TransactionKind
	ID       string
	Witnesses [][]byte
	Script    []byte // TxScript
	ScriptData []byte // TxScript
	BytecodeWitnessIndex uint8 // TxCreate
	Salt                 [32]byte // TxCreate
	MintAmount uint64 // TxMint
	MintAssetID [32]byte // TxMint
	Receipts []Receipt
}

// ReceiptKind enumerates the receipt variants a transaction may emit.
type ReceiptKind uint8

const (
	ReceiptCall ReceiptKind = iota
	ReceiptReturnData
	ReceiptTransfer
	ReceiptTransferOut
	ReceiptLog
	ReceiptLogData
	ReceiptScriptResult
	ReceiptMessageOut
)

// Receipt is one VM receipt attached to a Transaction. Like Transaction,
// unused variant fields stay at their zero value.
type Receipt struct {
	Kind ReceiptKind
	ID   [32]byte
	// Log/LogData
	Ra, Rb, Rc, Rd uint64
	Data           []byte
	// Transfer/TransferOut
	To     [32]byte
	Amount uint64
	AssetID [32]byte
	// ScriptResult
	Result   uint64
	GasUsed  uint64
	// MessageOut
	Recipient [32]byte
	Nonce     [32]byte
}
