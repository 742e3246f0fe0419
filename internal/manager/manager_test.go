package manager_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/Anthya1104/raid-simulator/internal/blockstore"
	"github.com/Anthya1104/raid-simulator/internal/config"
	"github.com/Anthya1104/raid-simulator/internal/manager"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func newTestNodes() ([]*blockstore.Node, []manager.NodeClient) {
	raw := make([]*blockstore.Node, config.TotalShards)
	clients := make([]manager.NodeClient, config.TotalShards)
	for i := range raw {
		raw[i] = blockstore.NewNode(i)
		clients[i] = blockstore.LocalNode{Node: raw[i]}
	}
	return raw, clients
}

func TestStoreRecoverZeroPayload(t *testing.T) {
	_, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	report, err := mgr.Store(context.Background(), []byte{}, "empty.bin", 1024)
	assert.NoError(t, err)
	assert.Equal(t, 0, report.TotalStripes)

	out, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, uint64(0), rr.Metadata.OriginalSize)
	assert.Empty(t, rr.UnrecoverableStripes)
}

func TestStoreRecoverShortPayload(t *testing.T) {
	_, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	_, err = mgr.Store(context.Background(), []byte("hello"), "hello.txt", 4)
	assert.NoError(t, err)

	out, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
	assert.Equal(t, uint64(1), rr.Metadata.TotalStripes)
}

func bigPayload() []byte {
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = byte(i % 256)
	}
	return buf
}

func TestStoreRecoverTwoDataNodesOffline(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	raw[2].SetOnline(false)
	raw[4].SetOnline(false)

	out, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out))
	assert.Empty(t, rr.UnrecoverableStripes)
}

func TestStoreRecoverBothParityOffline(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	raw[config.DataShards].SetOnline(false)
	raw[config.DataShards+1].SetOnline(false)

	out, _, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out))
}

func TestStoreRecoverDataAndParityOffline(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	raw[0].SetOnline(false)
	raw[config.DataShards+1].SetOnline(false)

	out, _, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out))
}

func TestStoreRecoverTripleFailureIsUnrecoverable(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	raw[0].SetOnline(false)
	raw[1].SetOnline(false)
	raw[2].SetOnline(false)

	out, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err) // Recover itself succeeds; individual stripes report Unrecoverable.
	assert.NotEmpty(t, rr.UnrecoverableStripes)
	assert.Equal(t, len(payload), len(out))
	assert.False(t, bytes.Equal(payload, out))
}

func TestStoreRecoverCorruptedFragmentDemotesToMissing(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	// corrupt node 3's stripe_0_block_3 blob to the wrong length.
	assert.NoError(t, raw[3].Put("stripe_0_block_3", []byte("short")))

	out, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out))
	assert.Empty(t, rr.UnrecoverableStripes)
}

func TestMetadataReplicationSurvivesAllButOneNode(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := []byte("metadata survives on a single node")
	_, err = mgr.Store(context.Background(), payload, "m.txt", 8)
	assert.NoError(t, err)

	for i := 1; i < len(raw); i++ {
		raw[i].Clear()
	}

	_, rr, err := mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)
	assert.Equal(t, "m.txt", rr.Metadata.OriginalFilename)
}

func TestRecoverWritebackFillsMissingNode(t *testing.T) {
	raw, clients := newTestNodes()
	mgr, err := manager.New(clients)
	assert.NoError(t, err)

	payload := bigPayload()
	_, err = mgr.Store(context.Background(), payload, "data.bin", 512)
	assert.NoError(t, err)

	raw[1].SetOnline(false)
	raw[1].Clear() // simulate the failed node coming back as a blank replacement disk
	_, _, err = mgr.Recover(context.Background(), manager.RecoverOptions{})
	assert.NoError(t, err)

	// node 1 stayed offline during recovery, so it still has nothing for stripe 0.
	_, getErr := raw[1].Get("stripe_0_block_1")
	assert.ErrorIs(t, getErr, blockstore.ErrNotFound)

	raw[1].SetOnline(true)
	out, _, err := mgr.Recover(context.Background(), manager.RecoverOptions{Writeback: true})
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(payload, out))

	blob, err := raw[1].Get("stripe_0_block_1")
	assert.NoError(t, err)
	assert.NotEmpty(t, blob)
}

func TestParseFragmentLength(t *testing.T) {
	v, err := manager.ParseFragmentLength("64KB")
	assert.NoError(t, err)
	assert.Equal(t, 64*1024, v)

	v, err = manager.ParseFragmentLength("1MB")
	assert.NoError(t, err)
	assert.Equal(t, 1024*1024, v)

	_, err = manager.ParseFragmentLength("1GB")
	assert.Error(t, err)
}
