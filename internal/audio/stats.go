package audio

// Stats summarizes a sample sequence: the mean of the raw signed
// amplitudes and the peak absolute amplitude.
type Stats struct {
	Mean float64
	Peak int
}

// Measure computes amplitude statistics over samples in a single pass.
// The sample slice must be non-empty; an empty slice is a caller bug.
func Measure(samples []int) Stats {
	if len(samples) == 0 {
		panic("audio: Measure called with an empty sample slice")
	}

	var sum int64
	peak := 0
	for _, s := range samples {
		sum += int64(s)
		if a := abs(s); a > peak {
			peak = a
		}
	}

	return Stats{
		Mean: float64(sum) / float64(len(samples)),
		Peak: peak,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
