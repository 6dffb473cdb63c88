// Package billing holds the invoice model of the supply chain.
//
// Two kinds of invoice exist:
//   - CUSTOMER: the broker bills the end customer for a job; the amount is the
//     job's customer total.
//   - SETTLEMENT: the target of a purchase order bills its origin; the amount is
//     the purchase order's vendor amount.
//
// Amounts are copied from their source document when the invoice is issued and
// are never recomputed. Only the reconciliation auditor may later change an
// invoice amount, and every such change is recorded in the sync log.
package billing
