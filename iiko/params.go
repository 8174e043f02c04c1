package iiko

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Param is a single query or form key/value pair
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of key/value pairs. Unlike url.Values it keeps
// insertion order and allows repeated keys.
type Params []Param

// NewParams returns an empty parameter list
func NewParams() Params {
	return Params{}
}

// Add appends key=value unconditionally
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// AddString appends key=value when value is not empty
func (p Params) AddString(key, value string) Params {
	if value == "" {
		return p
	}
	return p.Add(key, value)
}

// AddBool appends key=true|false when v is set
func (p Params) AddBool(key string, v *bool) Params {
	if v == nil {
		return p
	}
	return p.Add(key, strconv.FormatBool(*v))
}

// AddInt appends the decimal value of v when set
func (p Params) AddInt(key string, v *int64) Params {
	if v == nil {
		return p
	}
	return p.Add(key, strconv.FormatInt(*v, 10))
}

// AddAll appends key once per value
func (p Params) AddAll(key string, values []string) Params {
	for _, v := range values {
		p = p.Add(key, v)
	}
	return p
}

// AddTime appends t formatted with layout when t is set
func (p Params) AddTime(key string, t *time.Time, layout string) Params {
	if t == nil {
		return p
	}
	return p.Add(key, t.Format(layout))
}

// Encode renders the pairs as a URL-encoded string in insertion order
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Bool returns a pointer to v, for optional boolean parameters
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for optional integer parameters
func Int(v int64) *int64 { return &v }
