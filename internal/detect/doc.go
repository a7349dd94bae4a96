// Package detect implements the two analysis passes of the duplicate finder.
//
// Pass 1 (Recurring) scans a replay of the input and classifies which values
// occur more than once. The set of distinct values seen so far lives on disk
// in a SeenLog; only values proven to recur are held in memory. Memory is
// therefore proportional to the number of recurring values, not the number
// of distinct values.
//
// Pass 2 (Reconcile) scans a second replay and emits each recurring value
// once, at its first occurrence, which yields first-occurrence order.
//
// SeenLog implementations:
//
//   - FileSeenLog: append-only scratch log checked by a linear scan per
//     lookup. O(distinct²) time, no index in memory.
//   - SQLiteSeenLog: encoded keys in an on-disk SQLite B-tree with a capped
//     page cache. O(n log n) time, same memory bound.
//
// Both passes are strictly sequential: a lookup completes before the next
// value is read, and the seen-log always reflects every earlier distinct value.
package detect
