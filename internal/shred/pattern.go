package shred

// Pattern is the byte pattern written during one overwrite pass
type Pattern int

const (
	PatternZeros Pattern = iota
	PatternOnes
	PatternRandom
)

func (p Pattern) String() string {
	switch p {
	case PatternZeros:
		return "zeros"
	case PatternOnes:
		return "ones"
	case PatternRandom:
		return "random"
	default:
		return "unknown"
	}
}

// PatternFor returns the pattern for a 1-based pass number
func PatternFor(pass int) Pattern {
	return Pattern((pass - 1) % 3)
}

// fill prepares buf for a fixed pattern. Random buffers are filled per chunk.
func (p Pattern) fill(buf []byte) {
	var b byte
	if p == PatternOnes {
		b = 0xFF
	}
	for i := range buf {
		buf[i] = b
	}
}
