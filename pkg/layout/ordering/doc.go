// Package ordering arranges the nodes of each layer within a lane to reduce
// edge crossings.
//
// # Slots and Order
//
// An [Orderer] writes two fields on every node of a lane:
//
//   - Slot is the row the node occupies in the lane. Nodes of different
//     layers sharing a slot are drawn at the same height, which turns
//     connected chains into straight horizontal runs.
//   - Order is the node's index within its layer, top to bottom.
//
// Orderers never touch [graph.Node.Layer].
//
// # Strategies
//
// [Alignment] walks the layers left to right and lets each node take the slot
// of a connected predecessor, unless another node of the same layer claimed
// it first. Unaligned nodes open a new slot. This is cheap and keeps straight
// chains straight, but only looks one edge back.
//
// [Barycentric] starts from the alignment, then alternates down and up sweeps
// that sort each layer by the mean position of its neighbors in earlier
// (down) or later (up) layers, breaking ties by node id. After every sweep
// the crossings are counted with [CountCrossings] and the best ordering seen
// is kept.
//
// [Auto] picks barycentric for lanes with more than two layers and alignment
// otherwise.
//
// # Counting Crossings
//
// [CountCrossings] sums crossings between consecutive layers. Two edges
// (u1,v1) and (u2,v2) cross iff pos(u1) < pos(u2) and pos(v1) > pos(v2), so
// the count is the number of inversions in the target positions once edges
// are sorted by source position, computed with a Fenwick tree.
package ordering
