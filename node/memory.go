package node

import (
	"context"
	"sort"
	"strconv"
)

// Memory is an in-memory Client backed by a fixed slice of blocks, ordered
// by Height. It exists for tests: the scheduler drives it exactly as it
// would a real node, so resume/backoff/pagination behavior can be tested
// without a network dependency.
type Memory struct {
	blocks []BlockData
}

// NewMemory returns a Memory client serving blocks, sorted by height.
func NewMemory(blocks []BlockData) *Memory {
	sorted := make([]BlockData, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })
	return &Memory{blocks: sorted}
}

// Blocks implements Client. It returns up to req.Limit blocks with height
// greater than req.Cursor (interpreted as a decimal height; empty means
// "from genesis"), regardless of req.Direction — Memory only ever serves
// forward, matching the one direction the scheduler requests.
func (m *Memory) Blocks(ctx context.Context, req PaginationRequest) (PaginatedResult[BlockData], error) {
	after := uint32(0)
	if req.Cursor != "" {
		after = parseHeight(req.Cursor)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	var page []BlockData
	for _, b := range m.blocks {
		if b.Height <= after {
			continue
		}
		page = append(page, b)
		if len(page) == limit {
			break
		}
	}

	cursor := req.Cursor
	if len(page) > 0 {
		cursor = formatHeight(page[len(page)-1].Height)
	}

	hasNext := false
	if len(page) > 0 {
		last := page[len(page)-1].Height
		for _, b := range m.blocks {
			if b.Height > last {
				hasNext = true
				break
			}
		}
	}

	return PaginatedResult[BlockData]{Items: page, Cursor: cursor, HasNext: hasNext}, nil
}

// TipHeight returns the height of the highest block Memory knows about, or
// 0 if it holds no blocks.
func (m *Memory) TipHeight() uint32 {
	if len(m.blocks) == 0 {
		return 0
	}
	return m.blocks[len(m.blocks)-1].Height
}

func formatHeight(h uint32) string {
	return strconv.FormatUint(uint64(h), 10)
}

func parseHeight(s string) uint32 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
