package fixtures

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidScenario  = errors.New("invalid test")
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrNotImplemented   = errors.New("not yet implemented")
	ErrRequestMismatch  = errors.New("request mismatch")
	ErrResultMismatch   = errors.New("result mismatch")
	ErrExpectedError    = errors.New("expected remote procedure error")
	ErrUntested         = errors.New("rpc method has no test")
)

// Fixture is one recorded scenario of an action.
type Fixture struct {
	Action   string          `json:"-"`
	Args     nanorpc.Args    `json:"args"`
	Expected json.RawMessage `json:"expected"`
	Request  json.RawMessage `json:"request"`
	Response json.RawMessage `json:"response"`
}

// IsError reports whether the stub response carries an "error" key.
func (f Fixture) IsError() bool {
	res := gjson.ParseBytes(f.Response)
	return res.IsObject() && res.Get("error").Exists()
}

// Table holds every fixture of a corpus by action.
type Table map[string][]Fixture

func (t Table) Add(f Fixture) {
	t[f.Action] = append(t[f.Action], f)
}

func (t Table) Actions() []string {
	actions := make([]string, 0, len(t))
	for action := range t {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

func (t Table) Len() int {
	n := 0
	for _, list := range t {
		n += len(list)
	}
	return n
}

// Index flattens the table into canonical request body -> fixture. Two fixtures with
// structurally equal requests make the table ambiguous and are rejected.
func (t Table) Index() (map[string]Fixture, error) {
	index := make(map[string]Fixture, t.Len())
	for _, action := range t.Actions() {
		for _, f := range t[action] {
			key, err := Canonical(f.Request)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidScenario, "request of %s is not JSON: %s", action, err)
			}
			if existing, found := index[key]; found {
				return nil, errors.Wrapf(ErrDuplicateRequest, "%s in %s and %s", key, existing.Action, action)
			}
			index[key] = f
		}
	}
	return index, nil
}

// Canonical re-encodes a JSON document with sorted object keys and no insignificant
// whitespace, so that structurally equal documents compare equal as strings.
// Numbers keep their literal text.
func Canonical(data []byte) (string, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Equal compares two JSON documents structurally.
func Equal(a, b []byte) bool {
	ca, err := Canonical(a)
	if err != nil {
		return false
	}
	cb, err := Canonical(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// decodeJSON decodes exactly one JSON document, keeping numbers as json.Number.
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}
	return v, nil
}

func indent(data []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}
