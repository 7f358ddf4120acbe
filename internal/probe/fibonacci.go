package probe

// fibonacci yields the classic sequence 1, 1, 2, 3, 5, 8, ... used to choose
// successive worker counts during scale-up (spec §4.6): growth starts
// cautious and accelerates, rather than jumping in equal linear steps that
// would either waste time at low concurrency or overshoot past the stable
// point in one leap.
type fibonacci struct {
	curr, next uint32
}

func newFibonacci() *fibonacci {
	return &fibonacci{curr: 0, next: 1}
}

// Next advances and returns the next value in the sequence.
func (f *fibonacci) Next() uint32 {
	newNext := f.curr + f.next
	f.curr = f.next
	f.next = newNext
	return f.curr
}

// fibonacciUpTo returns every term of the sequence up to and including the
// first term >= limit.
func fibonacciUpTo(limit uint32) []uint32 {
	f := newFibonacci()
	var out []uint32
	for {
		v := f.Next()
		out = append(out, v)
		if v >= limit {
			return out
		}
	}
}
