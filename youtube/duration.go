package youtube

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseISODuration parses the ISO-8601 duration strings the Data API uses
// for contentDetails.duration (e.g., "PT1M3S", "PT2H", "P1DT30S").
func parseISODuration(s string) (time.Duration, error) {
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid ISO duration %q", s)
	}

	var total time.Duration
	var num strings.Builder
	inTime := false
	components := 0

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'T':
			inTime = true
		default:
			if num.Len() == 0 {
				return 0, fmt.Errorf("invalid ISO duration %q", s)
			}
			n, err := strconv.Atoi(num.String())
			if err != nil {
				return 0, fmt.Errorf("invalid ISO duration %q", s)
			}
			num.Reset()

			var unit time.Duration
			switch r {
			case 'D':
				unit = 24 * time.Hour
			case 'H':
				unit = time.Hour
			case 'M':
				unit = time.Minute
				if !inTime {
					// Calendar months never show up in video durations.
					return 0, fmt.Errorf("unsupported month in ISO duration %q", s)
				}
			case 'S':
				unit = time.Second
			default:
				return 0, fmt.Errorf("invalid ISO duration %q", s)
			}
			total += time.Duration(n) * unit
			components++
		}
	}

	if num.Len() != 0 || components == 0 {
		return 0, fmt.Errorf("invalid ISO duration %q", s)
	}
	return total, nil
}
