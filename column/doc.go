// Package column provides the typed value model shared by dimension
// dictionaries, query predicates and aggregate results.
//
// Values are small tagged unions (null, int, float, string, bool) with
// interned strings and a stable Key() representation used for dictionary
// maps and persisted artifacts. The design avoids reflection entirely so
// that dictionary lookups stay allocation-free on the hot query path.
package column
