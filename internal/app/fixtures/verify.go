package fixtures

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"unicode"

	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/pkg/errors"
)

// Caller is the client surface Verify drives.
type Caller interface {
	Action(name string) (nanorpc.Action, bool)
	Call(ctx context.Context, action string, args nanorpc.Args) (interface{}, error)
}

// RequestRecorder exposes the last request body a transport sent.
type RequestRecorder interface {
	LastRequest() []byte
}

// Verify runs f against client and checks the request it sent and the result it decoded.
// A fixture whose response carries "error" only checks that the call failed remotely.
func Verify(ctx context.Context, client Caller, recorder RequestRecorder, f Fixture) error {
	if _, ok := client.Action(f.Action); !ok {
		return errors.Wrapf(ErrNotImplemented, "`%s`", f.Action)
	}
	if f.Request == nil || f.Response == nil {
		dump, _ := json.Marshal(f)
		return errors.Wrapf(ErrInvalidScenario, "for %s: %s", f.Action, indent(dump))
	}

	result, err := client.Call(ctx, f.Action, f.Args)
	if f.IsError() {
		if nanorpc.IsRemote(err) {
			return nil
		}
		return errors.Wrapf(ErrExpectedError, "%s returned %v (err %v)", f.Action, result, err)
	}
	if err != nil {
		return errors.Wrapf(err, "call %s", f.Action)
	}

	sent := recorder.LastRequest()
	if !Equal(sent, f.Request) {
		return errors.Wrapf(ErrRequestMismatch, "%s sent:\n%s\nexpected:\n%s", f.Action, indent(sent), indent(f.Request))
	}

	got, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "encode result of %s", f.Action)
	}
	expected := f.Expected
	if expected == nil {
		expected = json.RawMessage("null")
	}
	if !Equal(got, expected) {
		return errors.Wrapf(ErrResultMismatch, "%s result:\n%s\nexpected:\n%s", f.Action, indent(got), indent(expected))
	}
	return nil
}

// Coverage fails, naming them, for every action without a fixture in table.
func Coverage(table Table, actions []string) error {
	var missing []string
	for _, action := range actions {
		if len(table[action]) == 0 {
			missing = append(missing, "`"+action+"`")
		}
	}
	if len(missing) > 0 {
		return errors.Wrap(ErrUntested, strings.Join(missing, ", "))
	}
	return nil
}

// MethodActions returns the snake_case names of the exported methods of v, skipping exclude.
func MethodActions(v interface{}, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	t := reflect.TypeOf(v)
	var actions []string
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if skip[name] {
			continue
		}
		actions = append(actions, snakeCase(name))
	}
	return actions
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
