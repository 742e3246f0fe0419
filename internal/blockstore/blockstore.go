// Package blockstore implements the block I/O contract of spec §4.5:
// a flat per-node namespace of opaque named blobs, generalized from
// the teacher's positional Disk{ID, Data [][]byte} into named storage
// so it can hold both stripe fragments and the replicated metadata
// blob under the same put/get/is_online contract.
package blockstore

import (
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the named blob does not exist on
// the node (demoted to "missing" at the codec boundary, spec §7).
var ErrNotFound = errors.New("blockstore: blob not found")

// Node is one storage endpoint: a named-blob map guarded against
// concurrent access, matching the spec §5 single-writer-per-Store
// policy.
type Node struct {
	ID     int
	mu     sync.RWMutex
	blobs  map[string][]byte
	online bool
}

// NewNode creates an online, empty node with the given index.
func NewNode(id int) *Node {
	return &Node{ID: id, blobs: make(map[string][]byte), online: true}
}

// Put stores data under name, overwriting any prior value.
func (n *Node) Put(name string, data []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	n.blobs[name] = cp
	return nil
}

// Get retrieves the blob stored under name. It returns ErrNotFound if
// absent, or if the node has been marked offline (spec: an offline
// node is "treated as all its fragments missing").
func (n *Node) Get(name string) ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if !n.online {
		return nil, ErrNotFound
	}
	b, ok := n.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, nil
}

// Delete removes the blob stored under name, if present.
func (n *Node) Delete(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.blobs, name)
	return nil
}

// IsOnline reports the node's current liveness.
func (n *Node) IsOnline() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.online
}

// SetOnline flips the node's liveness. Used by failure simulation to
// take a node offline (or bring it back) without destroying its data.
func (n *Node) SetOnline(online bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online = online
}

// Clear simulates a disk failure / corruption: all blobs on the node
// are discarded (the teacher's ClearDisk, generalized to named blobs).
func (n *Node) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.blobs = make(map[string][]byte)
}
