// Package manager implements the stripe manager / file codec of spec
// §4.4: it partitions a payload into D·L-byte stripes, drives the
// stripe encoder on store and the reconstructor on recover, and
// replicates metadata across every node.
package manager

import (
	"context"
	"fmt"

	"github.com/Anthya1104/raid-simulator/internal/config"
	"github.com/Anthya1104/raid-simulator/internal/stripe"
	"github.com/sirupsen/logrus"
)

// NodeClient is the block-I/O contract a node presents to the
// manager (spec §4.5), satisfied by *transport.Client or an in-process
// *blockstore.Node wrapper.
type NodeClient interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	IsOnline(ctx context.Context) bool
}

// Manager drives Store/Recover across an ordered list of D+2 node
// clients, one per stripe slot.
type Manager struct {
	Nodes        []NodeClient
	DataShards   int
	ParityShards int
}

// New returns a Manager over nodes, requiring exactly
// config.DataShards+config.ParityShards entries, slot-ordered (0..D-1
// data, D is P, D+1 is Q).
func New(nodes []NodeClient) (*Manager, error) {
	if len(nodes) != config.TotalShards {
		return nil, fmt.Errorf("manager: need exactly %d nodes, got %d", config.TotalShards, len(nodes))
	}
	return &Manager{Nodes: nodes, DataShards: config.DataShards, ParityShards: config.ParityShards}, nil
}

// StoreReport summarizes a single Store call: its stripe count and the
// nodes that rejected the metadata write. A failed fragment write is
// returned as Store's error and is not recorded in NodeErrors.
type StoreReport struct {
	TotalStripes int
	NodeErrors   map[int]error // node index -> metadata write error, if any
}

// Store partitions payload into D·L-byte stripes (zero-padding the
// tail), encodes P/Q per stripe, and writes metadata plus all D+2
// fragments per stripe to their owning nodes. A single fragment-write
// failure aborts the remaining writes for that stripe and the call
// (spec §4.4 policy 4: best-effort, abort-on-first-failure).
func (m *Manager) Store(ctx context.Context, payload []byte, filename string, fragmentLen int) (StoreReport, error) {
	if fragmentLen <= 0 {
		return StoreReport{}, fmt.Errorf("manager: fragment length must be positive, got %d", fragmentLen)
	}

	n := uint64(len(payload))
	total := totalStripes(n, m.DataShards, fragmentLen)
	md := Metadata{
		OriginalFilename: filename,
		OriginalSize:     n,
		BlockSize:        uint64(fragmentLen),
		TotalStripes:     total,
	}

	report := StoreReport{TotalStripes: int(total), NodeErrors: make(map[int]error)}

	blob, err := md.Marshal()
	if err != nil {
		return report, fmt.Errorf("manager: marshal metadata: %w", err)
	}
	for i, node := range m.Nodes {
		if err := node.Put(ctx, MetadataBlobName, blob); err != nil {
			logrus.Warnf("[manager] node %d rejected metadata: %v", i, err)
			report.NodeErrors[i] = err
		}
	}

	stripeBytes := m.DataShards * fragmentLen
	for s := 0; s < int(total); s++ {
		start := s * stripeBytes
		end := start + stripeBytes
		var slice []byte
		if end <= len(payload) {
			slice = payload[start:end]
		} else if start < len(payload) {
			slice = payload[start:]
		}

		data := make([][]byte, m.DataShards)
		for i := 0; i < m.DataShards; i++ {
			frag := make([]byte, fragmentLen)
			chunkStart := i * fragmentLen
			if chunkStart < len(slice) {
				chunkEnd := chunkStart + fragmentLen
				if chunkEnd > len(slice) {
					chunkEnd = len(slice)
				}
				copy(frag, slice[chunkStart:chunkEnd])
			}
			data[i] = frag
		}

		p, q, err := stripe.Encode(data)
		if err != nil {
			return report, fmt.Errorf("manager: encode stripe %d: %w", s, err)
		}

		for i := 0; i < m.DataShards; i++ {
			if err := m.Nodes[i].Put(ctx, stripeBlockName(s, i), data[i]); err != nil {
				return report, fmt.Errorf("manager: write stripe %d block %d: %w", s, i, err)
			}
		}
		if err := m.Nodes[m.DataShards].Put(ctx, stripeParityPName(s), p); err != nil {
			return report, fmt.Errorf("manager: write stripe %d parity P: %w", s, err)
		}
		if err := m.Nodes[m.DataShards+1].Put(ctx, stripeParityQName(s), q); err != nil {
			return report, fmt.Errorf("manager: write stripe %d parity Q: %w", s, err)
		}

		logrus.Debugf("[manager] stored stripe %d/%d", s+1, total)
	}

	logrus.Infof("[manager] stored %q: %d bytes across %d stripes", filename, n, total)
	return report, nil
}
