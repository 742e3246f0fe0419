package blockstore

import "context"

// LocalNode adapts a Node to the context-shaped NodeClient contract
// the manager package uses for both in-process and remote nodes
// (spec §4.5: the block-I/O contract is identical either way). The
// context is accepted for interface parity and ignored, since a Node
// never blocks.
type LocalNode struct {
	*Node
}

// Put implements the ctx-shaped NodeClient contract.
func (l LocalNode) Put(_ context.Context, name string, data []byte) error {
	return l.Node.Put(name, data)
}

// Get implements the ctx-shaped NodeClient contract.
func (l LocalNode) Get(_ context.Context, name string) ([]byte, error) {
	return l.Node.Get(name)
}

// IsOnline implements the ctx-shaped NodeClient contract.
func (l LocalNode) IsOnline(_ context.Context) bool {
	return l.Node.IsOnline()
}
