package logic

// sampleRing is a fixed-capacity ring of light readings with a running sum.
// Not safe for concurrent use.
type sampleRing struct {
	buf    []int
	cursor int // next write position, which is also the oldest slot once full
	filled int
	sum    int
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{buf: make([]int, size)}
}

// push overwrites the oldest slot and keeps sum equal to the buffer total.
func (r *sampleRing) push(v int) {
	r.sum -= r.buf[r.cursor]
	r.buf[r.cursor] = v
	r.sum += v
	r.cursor = (r.cursor + 1) % len(r.buf)
	if r.filled < len(r.buf) {
		r.filled++
	}
}

// average is the truncated mean of the filled slots.
func (r *sampleRing) average() int {
	if r.filled == 0 {
		return 0
	}
	return r.sum / r.filled
}
