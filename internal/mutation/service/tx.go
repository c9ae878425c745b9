package service

import (
	"context"
	"sync"
	"time"

	dErrors "letterc/pkg/domain-errors"
)

// TxRunner is the transaction boundary for the commit sequence. The postgres
// implementation (cmd/server) opens a real transaction and carries it through
// context via pkg/platform/tx; the memory implementation serializes commits
// touching the same ledger key behind a sharded mutex.
//
// The key groups conflicting commits: commits with the same key never
// interleave. The engine keys by source ownership id.
type TxRunner interface {
	RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// UncertainError marks a failure at or after the transaction commit point:
// the engine cannot tell whether the writes became visible. Callers must
// check the journal before retrying.
type UncertainError struct {
	Err error
}

func (e *UncertainError) Error() string {
	return "commit outcome unknown: " + e.Err.Error()
}

func (e *UncertainError) Unwrap() error {
	return e.Err
}

// numShards spreads commit serialization across independent locks so
// unrelated regions do not contend.
const numShards = 64

// defaultTxTimeout bounds a commit sequence when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

// ShardedTx is the memory-mode TxRunner. It provides mutual exclusion, not
// rollback — the engine compensates on partial failure (see commit).
type ShardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashKey(key) % numShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// hashKey uses FNV-1a for shard distribution.
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
