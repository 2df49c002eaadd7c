package armrest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const day = 24 * time.Hour

var durationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// FormatDuration renders d as the ISO-8601 duration ARM properties use:
// whole days as P<n>D, anything else as PT<h>H<m>M<s>S with zero parts left
// out. Sub-second precision is dropped.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d <= 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("P")
	if days := d / day; days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10) + "D")
		d -= days * day
	}
	if d == 0 {
		return b.String()
	}
	b.WriteString("T")
	for _, part := range []struct {
		unit   time.Duration
		suffix string
	}{{time.Hour, "H"}, {time.Minute, "M"}, {time.Second, "S"}} {
		if n := d / part.unit; n > 0 {
			b.WriteString(strconv.FormatInt(int64(n), 10) + part.suffix)
			d -= n * part.unit
		}
	}
	return b.String()
}

// ParseDuration reads the day and time parts of an ISO-8601 duration such
// as P1D, PT2M or PT1H30M. Years, months and weeks have no fixed length and
// are rejected.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return 0, errors.Errorf("invalid ISO-8601 duration %q", s)
	}
	var total time.Duration
	for i, unit := range []time.Duration{day, time.Hour, time.Minute, time.Second} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid ISO-8601 duration %q", s)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}
