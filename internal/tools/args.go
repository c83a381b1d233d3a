package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/soapbridge/soapbridge/internal/core"
)

// Arguments is the loosely typed bag a host sends with tools/call. Each
// handler group decodes it into its own typed struct before doing anything
// else.
type Arguments map[string]any

const msgProjectPath = "Project path is required and must be a string"

// str returns the value under key when it is a non-empty string. Anything
// else, including a number or a blank string, counts as absent.
func (a Arguments) str(key string) (string, bool) {
	v, ok := a[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (a Arguments) optional(key string) string {
	v, _ := a.str(key)
	return v
}

func (a Arguments) require(key, message string) (string, error) {
	v, ok := a.str(key)
	if !ok {
		return "", &core.MissingFieldError{Field: key, Message: message}
	}
	return v, nil
}

func (a Arguments) projectPath() (string, error) {
	return a.require("projectPath", msgProjectPath)
}

// action returns the lower-cased discriminator of the manage_* tools.
func (a Arguments) action() (string, error) {
	v, err := a.require("action", "Action is required")
	return strings.ToLower(strings.TrimSpace(v)), err
}

// integer reads key as a whole number given either as a JSON number or a
// numeric string. ok is false when the key is absent.
func (a Arguments) integer(key string) (n int, ok bool, valid bool) {
	raw, present := a[key]
	if !present || raw == nil {
		return 0, false, true
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, true, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, true, false
		}
		f = parsed
	default:
		return 0, true, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, true, false
	}
	return int(f), true, true
}
