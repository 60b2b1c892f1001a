package vector

// search locates index in entries, which must be sorted ascending with
// unique indices. It returns the slot holding index, or the slot where it
// would have to be inserted to keep the order.
func search(entries []Entry, index uint32) (found bool, pos int) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)

		switch v := entries[mid].Index; {
		case v == index:
			return true, mid
		case v < index:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	return false, lo
}
