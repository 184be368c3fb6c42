package rmdupes

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHumanSize parses human-readable size strings (e.g., "2M", "512k", "1G")
func ParseHumanSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Convert to uppercase for consistent parsing
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	// Extract numeric part and suffix
	var numPart string
	var suffix string
	for i, char := range sizeStr {
		if char >= '0' && char <= '9' || char == '.' {
			numPart += string(char)
		} else {
			suffix = sizeStr[i:]
			break
		}
	}

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	var multiplier int64 = 1
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix in %s", sizeStr)
	}

	result := int(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}

	return result, nil
}

// humanSize renders a byte count with a metric suffix for progress output.
func humanSize(n int64) string {
	const (
		K = 1_000
		M = 1_000_000
		G = 1_000_000_000
		T = 1_000_000_000_000
	)

	neg := ""
	if n < 0 {
		neg = "-"
		n = -n
	}

	switch {
	case n >= T:
		return fmt.Sprintf("%s%.0fT", neg, float64(n)/T)
	case n >= G:
		return fmt.Sprintf("%s%.0fG", neg, float64(n)/G)
	case n >= M:
		return fmt.Sprintf("%s%.0fM", neg, float64(n)/M)
	case n >= K:
		return fmt.Sprintf("%s%.0fK", neg, float64(n)/K)
	default:
		return fmt.Sprintf("%s%d", neg, n)
	}
}
