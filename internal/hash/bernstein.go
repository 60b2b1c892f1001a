package hash

// bernsteinSeed is the initial state of the Bernstein hash.
const bernsteinSeed = 5381

// Bernstein computes the djb2 hash of name: h = h*33 + b, starting at 5381,
// with uint64 wraparound.
//
// The value decides which server owns a key, so it must never change.
func Bernstein(name []byte) uint64 {
	h := uint64(bernsteinSeed)
	for _, b := range name {
		h = h<<5 + h + uint64(b)
	}

	return h
}
