package market

// Direction classifies the trend on a single timeframe. It is recomputed
// every tick and never persisted on its own.
type Direction int8

const (
	Unknown Direction = 0
	Long    Direction = 1
	Short   Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "unknown"
	}
}

// Defined reports whether the direction carries a usable signal.
func (d Direction) Defined() bool {
	return d == Long || d == Short
}

// Opposite returns the reverse direction; Unknown stays Unknown.
func (d Direction) Opposite() Direction {
	return -d
}

// ParseDirection maps a side string ("long"/"short") back to a Direction.
// Anything else is Unknown.
func ParseDirection(s string) Direction {
	switch s {
	case "long":
		return Long
	case "short":
		return Short
	default:
		return Unknown
	}
}

// Directions serialize as their string form so persisted snapshots stay
// readable and stable across releases.
func (d Direction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	*d = ParseDirection(s)
	return nil
}
