package manager

import (
	"encoding/json"
	"strconv"
)

// MetadataBlobName is the reserved blob name every node stores its
// replicated copy of file metadata under (spec §6).
const MetadataBlobName = "metadata"

// Metadata describes a stored file: its name, original size, the
// fragment length used to encode it, and how many stripes it spans.
type Metadata struct {
	OriginalFilename string `json:"original_filename"`
	OriginalSize     uint64 `json:"original_size"`
	BlockSize        uint64 `json:"block_size"`
	TotalStripes     uint64 `json:"total_stripes"`
}

// Marshal serializes metadata to its reference JSON form.
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalMetadata parses a metadata blob retrieved from a node.
func UnmarshalMetadata(b []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// totalStripes computes T = ceil(N / (D*L)), with T=0 when N=0 (spec §3).
func totalStripes(n uint64, dataShards, fragmentLen int) uint64 {
	if n == 0 {
		return 0
	}
	stripeBytes := uint64(dataShards * fragmentLen)
	return (n + stripeBytes - 1) / stripeBytes
}

// stripeBlockName returns the reserved blob name for data slot i of
// stripe s (spec §6).
func stripeBlockName(s, i int) string {
	return "stripe_" + strconv.Itoa(s) + "_block_" + strconv.Itoa(i)
}

func stripeParityPName(s int) string {
	return "stripe_" + strconv.Itoa(s) + "_parity_p"
}

func stripeParityQName(s int) string {
	return "stripe_" + strconv.Itoa(s) + "_parity_q"
}
