// Package store defines the abstract graph repository the docgraph core
// mutates and queries, along with its drivers. The core never constructs
// storage-specific query text; everything goes through the GraphStore
// interface, whose merge operations are atomic read-modify-writes.
//
// Two drivers ship with docgraph: an in-process mutex-guarded store
// (store/memory, the default) and a Neo4j-backed store (store/neo4j).
package store
