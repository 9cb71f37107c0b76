package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:y,wk:wk,d:d,h:h,m:m,s:s,ms:ms,us:us")

// ParseDelay parses an idle delay. A bare integer is read as seconds;
// anything else must be a Go duration such as "1m30s". Negative values
// clamp to zero.
func ParseDelay(input string) (int, error) {
	input = strings.TrimSpace(input)
	if seconds, err := strconv.Atoi(input); err == nil {
		return max(seconds, 0), nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("Invalid delay format: %q\n\nValid formats: 45, 90s, 2m, 1m30s", input)
	}
	if d < 0 {
		return 0, nil
	}
	return int(d / time.Second), nil
}

// FormatDelay renders a duration with at most two units, e.g. "1 m 30 s".
// Anything under a second renders as "0s".
func FormatDelay(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Truncate(time.Second)
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}
