// Package models defines the core domain records for splitpal.
//
// # Records
//
//   - User: a registered account; owned by the identity/directory side,
//     referenced everywhere else by ID.
//   - Group: a named set of members that expenses and settlements can be
//     tagged with. Membership is append-only here.
//   - Expense: a shared cost paid by one participant and apportioned among
//     all participants via a split rule (equal, percentage, exact).
//   - Split: one participant's share of an expense, with a flag marking the
//     entry that belongs to the payer.
//   - Settlement: a direct payment between two users that reduces an
//     existing balance.
//
// # Design principles
//
//  1. Records reference each other by ID strings, never by pointer, to avoid
//     circular structures and keep them trivially serializable.
//  2. Monetary values are Money (integer minor units); floating point only
//     appears at the JSON boundary.
//  3. Invariants are enforced by each record's Validate method before any
//     write. Balance views never mutate records; they are recomputed from
//     stored records on every read.
package models
