package buffer

// CircularFloat is a circular buffer of float64 values with a running mean
// over the values currently in memory. We use it for rolling acceptance-rate
// windows, where only the most recent BufSize iterations matter.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer holding totalSize values.
func NewCircularFloat(totalSize int) *CircularFloat {
	if totalSize < 1 {
		totalSize = 1
	}

	return &CircularFloat{
		buffer:  make([]float64, totalSize),
		pos:     0,
		BufSize: totalSize,
		Count:   0,
	}
}

// Add appends the given value to the buffer, overwriting the oldest entry.
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++

	c.buffer[c.pos] = v
	c.pos = (c.pos + 1) % c.BufSize

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}
}

// Full returns true once Add has been called at least BufSize times.
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// Mean returns the mean of the values currently in memory, or 0 if Add has
// never been called.
func (c *CircularFloat) Mean() float64 {
	if c.Count < 1 {
		return 0.0
	}

	tot := 0.0
	for i := 0; i < c.Count; i++ {
		tot += c.buffer[i]
	}
	return tot / float64(c.Count)
}
