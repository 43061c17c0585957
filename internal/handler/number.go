package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// looseInt decodes a JSON number or a numeric string.  Form inputs often
// post "3" rather than 3.
type looseInt int64

func (n *looseInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*n = looseInt(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = looseInt(v)
	return nil
}

// leadingInt decodes a seat count the way the booking form's parseInt does:
// a JSON number is truncated toward zero and a string is read up to its
// first non-digit.  Values that yield no integer decode as invalid instead of
// failing the whole body, so the caller can answer with its own message.
type leadingInt struct {
	n  int64
	ok bool
}

func (v *leadingInt) UnmarshalJSON(b []byte) error {
	*v = leadingInt{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			v.n, v.ok = parseLeadingInt(s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	v.n, v.ok = int64(f), true
	return nil
}

// parseLeadingInt reads an optional sign and the digits that follow it,
// ignoring leading whitespace and anything after the digits.
func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
