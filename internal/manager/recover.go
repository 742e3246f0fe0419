package manager

import (
	"context"
	"errors"

	"github.com/Anthya1104/raid-simulator/internal/stripe"
	"github.com/sirupsen/logrus"
)

// ErrMetadataUnavailable is returned by Recover when no node returned
// a parseable metadata blob (spec §7).
var ErrMetadataUnavailable = errors.New("manager: metadata unavailable from any node")

// RecoverReport summarizes recovery outcomes: which stripes could not
// be reconstructed (returned as zero fragments, spec §4.3/§7) and
// which advisory writebacks failed.
type RecoverReport struct {
	Metadata             Metadata
	UnrecoverableStripes []int
	WritebackErrors      map[string]error
}

// RecoverOptions controls optional recovery behavior.
type RecoverOptions struct {
	// Writeback, when true, writes reconstructed fragments back to
	// nodes that are online but had returned missing for them. Failures
	// are advisory and collected in RecoverReport, never failing Recover
	// (spec §4.4 item 5).
	Writeback bool
}

// Recover reads fragments from all D+2 nodes for every stripe,
// reconstructs missing ones, concatenates the data fragments in order,
// and truncates to the original payload size recorded in metadata.
func (m *Manager) Recover(ctx context.Context, opts RecoverOptions) ([]byte, RecoverReport, error) {
	report := RecoverReport{WritebackErrors: make(map[string]error)}

	online := make([]bool, len(m.Nodes))
	for i, node := range m.Nodes {
		online[i] = node.IsOnline(ctx)
	}

	md, err := m.fetchMetadata(ctx, online)
	if err != nil {
		return nil, report, err
	}
	report.Metadata = md

	out := make([]byte, 0, md.OriginalSize)
	for s := 0; s < int(md.TotalStripes); s++ {
		slots, missingByNode := m.fetchStripe(ctx, s, int(md.BlockSize), online)

		st, err := stripe.Reconstruct(slots, stripe.Options{})
		if err != nil {
			logrus.Warnf("[manager] stripe %d unrecoverable: %v", s, err)
			report.UnrecoverableStripes = append(report.UnrecoverableStripes, s)
			zero := make([]byte, m.DataShards*int(md.BlockSize))
			out = append(out, zero...)
			continue
		}

		for _, frag := range st.Data {
			out = append(out, frag...)
		}

		if opts.Writeback {
			m.writeback(ctx, s, st, missingByNode, online, report.WritebackErrors)
		}
	}

	if uint64(len(out)) > md.OriginalSize {
		out = out[:md.OriginalSize]
	}
	return out, report, nil
}

func (m *Manager) fetchMetadata(ctx context.Context, online []bool) (Metadata, error) {
	for i, node := range m.Nodes {
		if !online[i] {
			continue
		}
		blob, err := node.Get(ctx, MetadataBlobName)
		if err != nil {
			continue
		}
		md, err := UnmarshalMetadata(blob)
		if err != nil {
			continue
		}
		return md, nil
	}
	return Metadata{}, ErrMetadataUnavailable
}

// fetchStripe retrieves the D+2 slots for stripe s, marking a slot
// missing when its node is offline, the blob is absent, or the
// returned length disagrees with the expected fragment length (a
// CorruptedFragment per spec §7, demoted to missing). missingByNode
// maps slot index -> true for slots the manager itself marked missing,
// used to decide what writeback should fill in.
func (m *Manager) fetchStripe(ctx context.Context, s, fragmentLen int, online []bool) ([]stripe.Slot, map[int]bool) {
	total := m.DataShards + m.ParityShards
	slots := make([]stripe.Slot, total)
	missing := make(map[int]bool)

	for i := 0; i < total; i++ {
		name := slotBlobName(s, i, m.DataShards)
		if !online[i] {
			missing[i] = true
			continue
		}
		blob, err := m.Nodes[i].Get(ctx, name)
		if err != nil {
			missing[i] = true
			continue
		}
		if len(blob) != fragmentLen {
			logrus.Warnf("[manager] stripe %d slot %d: corrupted fragment (got %d bytes, want %d)", s, i, len(blob), fragmentLen)
			missing[i] = true
			continue
		}
		slots[i] = stripe.Slot{Data: blob}
	}
	return slots, missing
}

func slotBlobName(s, i, dataShards int) string {
	switch {
	case i < dataShards:
		return stripeBlockName(s, i)
	case i == dataShards:
		return stripeParityPName(s)
	default:
		return stripeParityQName(s)
	}
}

func (m *Manager) writeback(ctx context.Context, s int, st stripe.Stripe, missingByNode map[int]bool, online []bool, errs map[string]error) {
	for i := 0; i < m.DataShards; i++ {
		if !missingByNode[i] || !online[i] {
			continue
		}
		name := stripeBlockName(s, i)
		if err := m.Nodes[i].Put(ctx, name, st.Data[i]); err != nil {
			errs[name] = err
		}
	}
	pIdx, qIdx := m.DataShards, m.DataShards+1
	if missingByNode[pIdx] && online[pIdx] {
		name := stripeParityPName(s)
		if err := m.Nodes[pIdx].Put(ctx, name, st.P); err != nil {
			errs[name] = err
		}
	}
	if missingByNode[qIdx] && online[qIdx] {
		name := stripeParityQName(s)
		if err := m.Nodes[qIdx].Put(ctx, name, st.Q); err != nil {
			errs[name] = err
		}
	}
}
