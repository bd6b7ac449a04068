package probe

import (
	"strconv"
	"strings"
)

// parseLatency extracts the round-trip time in milliseconds from ping
// output. It tolerates two phrasings: an explicit figure such as
// "time=14.1 ms" or "time=14ms", and the sub-millisecond sentinel
// "time<1ms", which maps to 1.0. Returns false when no figure is found.
func parseLatency(output string) (float64, bool) {
	for _, line := range strings.Split(strings.ToLower(output), "\n") {
		if idx := strings.Index(line, "time="); idx != -1 {
			rest := line[idx+len("time="):]
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			token := strings.TrimSuffix(fields[0], "ms")
			ms, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
			if err != nil {
				continue
			}
			return ms, true
		}
		if strings.Contains(line, "time<") {
			return 1.0, true
		}
	}
	return 0, false
}
