package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

// snapshotOptions are the options of a memory-backed database holding
// whole UTXO snapshots, each written once.
func snapshotOptions() *opt.Options {
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     4 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
		DisableSeeksCompaction: true,
		ErrorIfExist:           true,
	}
}
