// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. Each store accepts a store.DBTX so it can operate on
// either a *sql.DB or a *sql.Tx, and exposes WithTx to obtain a
// transaction-scoped copy for use with store.RunInTransaction.
package postgres
