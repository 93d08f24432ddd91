// Package sqlite is the default vector store, a single SQLite file in WAL
// mode. Vectors are stored as float32 blobs and ranked by a brute-force scan,
// which is fast enough for FAQ-sized corpora.
//
// Rebuilds never expose a partial index: entries are written to a staged
// generation and the collection pointer is moved in one transaction.
package sqlite
