package dispatch

import "github.com/mixelpixx/kicad-mcp-server/pkg/kerrors"

// params is a thin accessor over a request's untyped JSON params map,
// so each command handler can pull out its own fields with sensible
// zero-value defaults instead of repeating type assertions.
type params map[string]interface{}

func (p params) requireString(key string) (string, error) {
	v := p.getString(key, "")
	if v == "" {
		return "", kerrors.New(kerrors.BadGrammar, "missing required parameter %q", key)
	}
	return v, nil
}

func (p params) getString(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func (p params) getFloat(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

func (p params) getInt(key string, def int64) int64 {
	if v, ok := p[key]; ok {
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		}
	}
	return def
}

func (p params) getBool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func (p params) getStringMap(key string) map[string]string {
	raw, ok := p[key]
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
