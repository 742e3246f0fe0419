// Package stripe implements the RAID-6 style encoder and reconstructor:
// given D data fragments it produces P/Q parity fragments, and given a
// stripe with up to two missing fragments (data or parity, any
// position) it restores the missing ones using GF(2^8) arithmetic.
package stripe

import (
	"errors"
	"fmt"

	"github.com/Anthya1104/raid-simulator/internal/gf"
)

// Sentinel errors surfaced by Encode/Reconstruct, matching the error
// taxonomy of the spec this codec implements.
var (
	ErrLengthMismatch = errors.New("stripe: fragment length mismatch")
	ErrUnrecoverable  = errors.New("stripe: too many missing fragments to reconstruct")
	ErrArithmetic     = errors.New("stripe: internal arithmetic invariant violated")
	ErrInconsistent   = errors.New("stripe: present fragments fail parity verification")
)

// Slot is one position in a stripe: a data fragment (index < D) or a
// parity fragment (index D for P, index D+1 for Q). A nil Data means
// the slot is missing.
type Slot struct {
	Data []byte
}

func (s Slot) present() bool { return s.Data != nil }

// coefficient returns c_i = pow(2, i), the Q-parity coefficient for
// data slot i. This is the only convention the spec permits: the
// alternative "c_i = i+1" scheme produces a singular 2x2 system
// whenever two missing data indices k1, k2 satisfy (k1+1) XOR (k2+1)
// == 0, and must not be used.
func coefficient(i int) byte {
	return gf.Pow(gf.Generator, i)
}

// Encode computes P and Q parity for D equal-length data fragments.
// P[j] = XOR of data[i][j]; Q[j] = XOR of mul(coefficient(i), data[i][j]).
func Encode(data [][]byte) (p, q []byte, err error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("stripe: encode requires at least one data fragment")
	}
	l := len(data[0])
	for _, d := range data {
		if len(d) != l {
			return nil, nil, fmt.Errorf("%w: fragments have differing lengths", ErrLengthMismatch)
		}
	}
	p = make([]byte, l)
	q = make([]byte, l)
	for i, d := range data {
		c := coefficient(i)
		for j := 0; j < l; j++ {
			p[j] = gf.Add(p[j], d[j])
			q[j] = gf.Add(q[j], gf.Mul(c, d[j]))
		}
	}
	return p, q, nil
}

// Stripe is a fully populated D-data + P + Q set, returned by
// Reconstruct on success.
type Stripe struct {
	Data [][]byte
	P    []byte
	Q    []byte
}

// Options controls caller-selectable reconstruction policy.
type Options struct {
	// Verify, when true and zero fragments are missing, recomputes P
	// and Q from the data fragments and compares them against the
	// supplied ones, failing with ErrInconsistent on mismatch. Default
	// (false) trusts a fully-present stripe as-is (spec §4.3, §9).
	Verify bool
}

// Reconstruct restores a stripe from D data slots followed by the P
// and Q parity slots (in that order: slots[0..D) are data, slots[D] is
// P, slots[D+1] is Q). It returns Unrecoverable when three or more
// slots are missing.
func Reconstruct(slots []Slot, opts Options) (Stripe, error) {
	if len(slots) < 3 {
		return Stripe{}, fmt.Errorf("stripe: need at least 1 data + P + Q slots, got %d", len(slots))
	}
	d := len(slots) - 2
	pIdx, qIdx := d, d+1

	l := -1
	for _, s := range slots {
		if s.present() {
			if l == -1 {
				l = len(s.Data)
			} else if len(s.Data) != l {
				return Stripe{}, fmt.Errorf("%w: present fragments disagree on length", ErrLengthMismatch)
			}
		}
	}
	if l == -1 {
		return Stripe{}, fmt.Errorf("%w: all slots missing", ErrUnrecoverable)
	}

	missing := make([]int, 0, 2)
	for i, s := range slots {
		if !s.present() {
			missing = append(missing, i)
		}
	}

	switch len(missing) {
	case 0:
		return reconstructM0(slots, d, pIdx, qIdx, l, opts)
	case 1:
		return reconstructM1(slots, d, pIdx, qIdx, l, missing[0])
	case 2:
		return reconstructM2(slots, d, pIdx, qIdx, l, missing[0], missing[1])
	default:
		return Stripe{}, fmt.Errorf("%w: %d slots missing", ErrUnrecoverable, len(missing))
	}
}

func reconstructM0(slots []Slot, d, pIdx, qIdx, l int, opts Options) (Stripe, error) {
	data := extractData(slots, d)
	if opts.Verify {
		p, q, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		if !bytesEqual(p, slots[pIdx].Data) || !bytesEqual(q, slots[qIdx].Data) {
			return Stripe{}, ErrInconsistent
		}
	}
	return Stripe{Data: data, P: slots[pIdx].Data, Q: slots[qIdx].Data}, nil
}

func reconstructM1(slots []Slot, d, pIdx, qIdx, l, missing int) (Stripe, error) {
	switch {
	case missing == pIdx:
		data := extractData(slots, d)
		p, _, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		return Stripe{Data: data, P: p, Q: slots[qIdx].Data}, nil
	case missing == qIdx:
		data := extractData(slots, d)
		_, q, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		return Stripe{Data: data, P: slots[pIdx].Data, Q: q}, nil
	default:
		// a single data fragment missing: data[k][j] = P[j] XOR XOR(other present data)
		k := missing
		recovered := make([]byte, l)
		copy(recovered, slots[pIdx].Data)
		for i := 0; i < d; i++ {
			if i == k {
				continue
			}
			for j := 0; j < l; j++ {
				recovered[j] = gf.Add(recovered[j], slots[i].Data[j])
			}
		}
		data := extractData(slots, d)
		data[k] = recovered
		return Stripe{Data: data, P: slots[pIdx].Data, Q: slots[qIdx].Data}, nil
	}
}

func reconstructM2(slots []Slot, d, pIdx, qIdx, l, m1, m2 int) (Stripe, error) {
	// normalize so m1 < m2
	if m1 > m2 {
		m1, m2 = m2, m1
	}

	switch {
	case m1 == pIdx && m2 == qIdx:
		data := extractData(slots, d)
		p, q, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		return Stripe{Data: data, P: p, Q: q}, nil

	case m2 == pIdx: // m1 is a data index, P missing (Q present)
		k := m1
		data, err := recoverDataFromQ(slots, d, qIdx, l, k)
		if err != nil {
			return Stripe{}, err
		}
		p, _, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		return Stripe{Data: data, P: p, Q: slots[qIdx].Data}, nil

	case m2 == qIdx: // m1 is a data index, Q missing (P present)
		k := m1
		data, err := recoverDataFromP(slots, d, pIdx, l, k)
		if err != nil {
			return Stripe{}, err
		}
		_, q, err := Encode(data)
		if err != nil {
			return Stripe{}, err
		}
		return Stripe{Data: data, P: slots[pIdx].Data, Q: q}, nil

	default: // both m1, m2 are data indices; P and Q present
		return recoverTwoData(slots, d, pIdx, qIdx, l, m1, m2)
	}
}

// recoverDataFromP recovers a single missing data fragment k using P
// (the same formula as the m=1 data-missing case).
func recoverDataFromP(slots []Slot, d, pIdx, l, k int) ([][]byte, error) {
	recovered := make([]byte, l)
	copy(recovered, slots[pIdx].Data)
	for i := 0; i < d; i++ {
		if i == k {
			continue
		}
		for j := 0; j < l; j++ {
			recovered[j] = gf.Add(recovered[j], slots[i].Data[j])
		}
	}
	data := extractData(slots, d)
	data[k] = recovered
	return data, nil
}

// recoverDataFromQ recovers a single missing data fragment k using Q:
// syndrome_Q[j] = Q[j] XOR XOR_{i != k present}(mul(c_i, data[i][j]));
// data[k][j] = div(syndrome_Q[j], c_k).
func recoverDataFromQ(slots []Slot, d, qIdx, l, k int) ([][]byte, error) {
	syndrome := make([]byte, l)
	copy(syndrome, slots[qIdx].Data)
	for i := 0; i < d; i++ {
		if i == k {
			continue
		}
		c := coefficient(i)
		for j := 0; j < l; j++ {
			syndrome[j] = gf.Add(syndrome[j], gf.Mul(c, slots[i].Data[j]))
		}
	}
	ck := coefficient(k)
	recovered := make([]byte, l)
	for j := 0; j < l; j++ {
		v, err := gf.Div(syndrome[j], ck)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArithmetic, err)
		}
		recovered[j] = v
	}
	data := extractData(slots, d)
	data[k] = recovered
	return data, nil
}

// recoverTwoData solves the 2x2 linear system of spec §4.3 for two
// missing data fragments k1 < k2, given P and Q present.
func recoverTwoData(slots []Slot, d, pIdx, qIdx, l, k1, k2 int) (Stripe, error) {
	sp := make([]byte, l)
	copy(sp, slots[pIdx].Data)
	sq := make([]byte, l)
	copy(sq, slots[qIdx].Data)

	for i := 0; i < d; i++ {
		if i == k1 || i == k2 {
			continue
		}
		c := coefficient(i)
		for j := 0; j < l; j++ {
			sp[j] = gf.Add(sp[j], slots[i].Data[j])
			sq[j] = gf.Add(sq[j], gf.Mul(c, slots[i].Data[j]))
		}
	}

	ck1 := coefficient(k1)
	ck2 := coefficient(k2)
	denom := gf.Add(ck1, ck2)
	if denom == 0 {
		return Stripe{}, fmt.Errorf("%w: coefficients for indices %d and %d collide", ErrArithmetic, k1, k2)
	}

	d1 := make([]byte, l)
	d2 := make([]byte, l)
	for j := 0; j < l; j++ {
		numerator := gf.Add(sq[j], gf.Mul(ck2, sp[j]))
		v1, err := gf.Div(numerator, denom)
		if err != nil {
			return Stripe{}, fmt.Errorf("%w: %v", ErrArithmetic, err)
		}
		d1[j] = v1
		d2[j] = gf.Add(v1, sp[j])
	}

	data := extractData(slots, d)
	data[k1] = d1
	data[k2] = d2
	return Stripe{Data: data, P: slots[pIdx].Data, Q: slots[qIdx].Data}, nil
}

func extractData(slots []Slot, d int) [][]byte {
	out := make([][]byte, d)
	for i := 0; i < d; i++ {
		out[i] = slots[i].Data
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
