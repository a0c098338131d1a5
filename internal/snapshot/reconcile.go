package snapshot

import mapset "github.com/deckarep/golang-set/v2"

// shelfOwnership maps document ID to the shelf claiming it. When several
// shelves claim one document the later entry wins.
func shelfOwnership(shelves []ShelfProjection) map[string]string {
	owner := make(map[string]string)
	for _, shelf := range shelves {
		for _, docID := range shelf.DocumentIDs {
			owner[docID] = shelf.ID
		}
	}
	return owner
}

// ReconcileShelves repairs the shelf relationship, which the transport
// format carries redundantly from both ends. A shelf's membership list
// overrides the per-document shelfId; documents referencing a shelf absent
// from the set are unshelved. The input slice is not modified.
func ReconcileShelves(docs []DocumentProjection, shelves []ShelfProjection) []DocumentProjection {
	owner := shelfOwnership(shelves)
	known := mapset.NewThreadUnsafeSet[string]()
	for _, shelf := range shelves {
		known.Add(shelf.ID)
	}

	out := make([]DocumentProjection, len(docs))
	copy(out, docs)
	for i := range out {
		if shelfID, ok := owner[out[i].ID]; ok {
			claimed := shelfID
			out[i].ShelfID = &claimed
			continue
		}
		if out[i].ShelfID != nil && !known.Contains(*out[i].ShelfID) {
			out[i].ShelfID = nil
		}
	}
	return out
}
