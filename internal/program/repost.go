package program

import "time"

// DefaultRepostThreshold is the widest gap between the delete and post
// transactions of a single re-post.
const DefaultRepostThreshold = 15 * time.Second

// IsReposting reports whether a and b, in either order, are a Posted and a
// Deleted whose timestamps are strictly closer than threshold.
func IsReposting(a, b Change, threshold time.Duration) bool {
	posted, deleted, ok := postedDeletedPair(a, b)
	if !ok {
		posted, deleted, ok = postedDeletedPair(b, a)
	}
	if !ok {
		return false
	}

	gap := posted.Timestamp.Sub(deleted.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	return gap < threshold
}

func postedDeletedPair(a, b Change) (Posted, Deleted, bool) {
	p, ok := a.(Posted)
	if !ok {
		return Posted{}, Deleted{}, false
	}
	d, ok := b.(Deleted)
	if !ok {
		return Posted{}, Deleted{}, false
	}
	return p, d, true
}

// Flatten replaces every adjacent repost pair with a single RePosted marker.
//
// A matched pair is consumed whole: its second element cannot start another
// match, so Post, Delete, Post, Delete yields two markers, not one. The
// result contains no repost pair, making a second pass a no-op.
// The input slice is not modified.
func Flatten(changes []Change, threshold time.Duration) []Change {
	var pairs []int
	for i := 0; i+1 < len(changes); i++ {
		if IsReposting(changes[i], changes[i+1], threshold) {
			pairs = append(pairs, i)
			i++ // partner is consumed
		}
	}

	out := make([]Change, len(changes))
	copy(out, changes)

	// Descending order keeps the earlier recorded indices valid.
	for j := len(pairs) - 1; j >= 0; j-- {
		i := pairs[j]
		out = append(out[:i+1], out[i+2:]...)
		out[i] = RePosted{}
	}
	return out
}
