package enum

import (
	"encoding/json"
	"strings"
)

// lookup finds s in names, case-insensitively. It returns -1 when absent.
func lookup(names []string, s string) int {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i
		}
	}
	return -1
}

// decode reads either a JSON string name or a JSON integer into an index.
// Unknown names and out-of-range integers yield fallback.
func decode(data []byte, names []string, fallback int) (int, error) {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return fallback, err
		}
		if i < 0 || i >= len(names) {
			return fallback, nil
		}
		return i, nil
	}
	if i := lookup(names, str); i >= 0 {
		return i, nil
	}
	return fallback, nil
}

func scanInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case int:
		return v, true
	case []byte:
		n := 0
		for _, c := range v {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		return n, len(v) > 0
	}
	return 0, false
}
