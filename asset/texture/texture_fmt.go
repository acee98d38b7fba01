package texture

type Format uint32

const (
	Luminance32F Format = iota
	Rgba32F
)

// Number of float32 channels per texel.
func (f Format) Channels() int {
	if f == Luminance32F {
		return 1
	}
	return 4
}

func (f Format) String() string {
	switch f {
	case Luminance32F:
		return "Luminance32F"
	case Rgba32F:
		return "Rgba32F"
	}
	return "unknown"
}
