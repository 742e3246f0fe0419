package manager

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFragmentLength parses a human-readable fragment length such as
// "64KB" or "1MB" into a byte count, generalized from
// original_source/codes/main.py's parse_block_size.
func ParseFragmentLength(s string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasSuffix(upper, "KB"):
		return parseUnit(upper, "KB", 1024)
	case strings.HasSuffix(upper, "MB"):
		return parseUnit(upper, "MB", 1024*1024)
	default:
		return 0, fmt.Errorf("manager: invalid block size format %q, use KB or MB (e.g. 64KB, 1MB)", s)
	}
}

func parseUnit(upper, suffix string, multiplier int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(upper, suffix))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("manager: invalid block size format %q, use KB or MB (e.g. 64KB, 1MB)", upper)
	}
	return n * multiplier, nil
}
