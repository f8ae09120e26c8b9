package scheduler

import "github.com/fuel-indexer-go/indexer/node"

// State is the resumable cursor one indexer's task loop carries between
// poll iterations, per spec.md §4.5's "State per indexer".
type State struct {
	// Cursor is the opaque token the node client resumes pagination from.
	Cursor string
	// NextBlock is the height the next batch must start at; blocks below
	// it are dropped from a fetched page as already-committed or
	// pre-start-block.
	NextBlock uint32
	// LastCommittedHeight is the height of the most recently committed
	// batch; it is persisted via registry.SetLastCommittedHeight after
	// every successful commit so a restart can resume from it.
	LastCommittedHeight uint32
	// StartBlock and EndBlock bound the range this indexer processes.
	// EndBlock of 0 means unbounded.
	StartBlock uint32
	EndBlock   uint32
	// Resumable selects the effective-start-height rule: true means
	// resume from max(StartBlock, LastCommittedHeight+1); false means
	// always start at StartBlock (or 1 if unset).
	Resumable bool
	// PageSize is the number of blocks requested per page; spec.md
	// defaults this to 10.
	PageSize int
}

// effectiveStartHeight computes the height State.NextBlock should be
// initialized to, per spec.md §4.5 step 1.
func effectiveStartHeight(s State) uint32 {
	start := s.StartBlock
	if start == 0 {
		start = 1
	}
	if !s.Resumable {
		return start
	}
	if s.LastCommittedHeight+1 > start {
		return s.LastCommittedHeight + 1
	}
	return start
}

// filterBlocks drops blocks below nextBlock (already committed or before
// the configured start) and truncates the run at the first block whose
// height exceeds endBlock (0 means unbounded), per spec.md §4.5 step 3.
// It assumes blocks arrive in ascending height order, matching the node
// interface's pagination contract.
func filterBlocks(blocks []node.BlockData, nextBlock, endBlock uint32) []node.BlockData {
	out := make([]node.BlockData, 0, len(blocks))
	for _, b := range blocks {
		if b.Height < nextBlock {
			continue
		}
		if endBlock != 0 && b.Height > endBlock {
			break
		}
		out = append(out, b)
	}
	return out
}
