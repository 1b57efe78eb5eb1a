package trigger

// Config maps arrive from JSON decoding, so numbers are float64 and lists
// are []interface{}. These helpers normalize the common access patterns.

func configString(config map[string]interface{}, key string) string {
	if s, ok := config[key].(string); ok {
		return s
	}
	return ""
}

func configBool(config map[string]interface{}, key string) bool {
	if b, ok := config[key].(bool); ok {
		return b
	}
	return false
}

func configNumber(config map[string]interface{}, key string) (float64, bool) {
	switch v := config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func configStrings(config map[string]interface{}, key string) []string {
	switch v := config[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func configInts(config map[string]interface{}, key string) ([]int, bool) {
	switch v := config[key].(type) {
	case []int:
		return v, true
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, int(n))
			case int:
				out = append(out, n)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func dataString(data map[string]interface{}, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func dataBool(data map[string]interface{}, key string) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return false
}

func dataNumber(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func dataStrings(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
