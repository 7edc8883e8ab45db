package chain

import "github.com/wellally/healthaudit/internal/models"

// index holds the secondary lookup structures, updated synchronously
// inside the append critical section. Indexed values are sequence numbers
// only; the arena owns the entry data. If index and arena ever disagree,
// the arena wins and the index is rebuilt by full rescan (see Restore).
type index struct {
	byActor    map[string][]uint64
	byResource map[string][]uint64
	byAction   map[string][]uint64
}

func newIndex() *index {
	return &index{
		byActor:    make(map[string][]uint64),
		byResource: make(map[string][]uint64),
		byAction:   make(map[string][]uint64),
	}
}

// resourceKey joins the resource pair into one index key.
func resourceKey(resourceType, resourceID string) string {
	return resourceType + "\x00" + resourceID
}

// add records an entry under each index. Appends arrive in ascending
// sequence order, so every posting list stays sorted without re-sorting.
func (ix *index) add(e models.Entry) {
	ix.byActor[e.Actor] = append(ix.byActor[e.Actor], e.Sequence)
	key := resourceKey(e.ResourceType, e.ResourceID)
	ix.byResource[key] = append(ix.byResource[key], e.Sequence)
	ix.byAction[e.Action] = append(ix.byAction[e.Action], e.Sequence)
}

// intersect merges two ascending posting lists, keeping common sequences.
func intersect(a, b []uint64) []uint64 {
	out := make([]uint64, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
