package nanorpc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Decoder turns a decoded JSON response (or a part of it) into a result.
type Decoder func(v interface{}) (interface{}, error)

// Raw returns the response unchanged.
func Raw(v interface{}) (interface{}, error) {
	return v, nil
}

// Path selects expr from the response and decodes the selection with next.
func Path(expr string, next Decoder) Decoder {
	return func(v interface{}) (interface{}, error) {
		selected, err := jsonpath.Get(expr, v)
		if err != nil {
			return nil, errors.Wrapf(err, "select %s", expr)
		}
		return next(selected)
	}
}

// Fields decodes the named fields of an object; other fields are kept as they are.
func Fields(decoders map[string]Decoder) Decoder {
	return func(v interface{}) (interface{}, error) {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("expected object, got %T", v)
		}
		out := make(map[string]interface{}, len(obj))
		for k, val := range obj {
			out[k] = val
		}
		for k, decode := range decoders {
			val, ok := obj[k]
			if !ok {
				return nil, errors.Errorf("missing field %q", k)
			}
			decoded, err := decode(val)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", k)
			}
			out[k] = decoded
		}
		return out, nil
	}
}

// Each decodes every element of a list with next.
func Each(next Decoder) Decoder {
	return func(v interface{}) (interface{}, error) {
		list, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("expected list, got %T", v)
		}
		out := make([]interface{}, len(list))
		for i, item := range list {
			decoded, err := next(item)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			out[i] = decoded
		}
		return out, nil
	}
}

// Int accepts integers sent either as JSON numbers or as decimal strings.
func Int(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse integer %q", val)
		}
		return n, nil
	case float64:
		if val != float64(int64(val)) {
			return nil, errors.Errorf("%v is not an integer", val)
		}
		return int64(val), nil
	case json.Number:
		return val.Int64()
	}
	return nil, errors.Errorf("expected integer, got %T", v)
}

func String(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// Strings decodes a list of strings. An empty string stands for an empty list, as the node sends it.
func Strings(v interface{}) (interface{}, error) {
	if s, ok := v.(string); ok && s == "" {
		return []string{}, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("expected list, got %T", v)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("item %d: expected string, got %T", i, item)
		}
		out[i] = s
	}
	return out, nil
}

// Bool accepts "1"/"0" and "true"/"false" flags as well as JSON booleans.
func Bool(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch val {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		}
		return nil, errors.Errorf("unrecognised flag %q", val)
	}
	return nil, errors.Errorf("expected flag, got %T", v)
}

// Amount decodes a raw amount without losing precision.
func Amount(v interface{}) (interface{}, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.Errorf("expected amount string, got %T", v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", s)
	}
	return d, nil
}

type Balance struct {
	Balance decimal.Decimal `json:"balance"`
	Pending decimal.Decimal `json:"pending"`
}

func decodeBalance(v interface{}) (interface{}, error) {
	fields, err := Fields(map[string]Decoder{"balance": Amount, "pending": Amount})(v)
	if err != nil {
		return nil, err
	}
	obj := fields.(map[string]interface{})
	return Balance{
		Balance: obj["balance"].(decimal.Decimal),
		Pending: obj["pending"].(decimal.Decimal),
	}, nil
}

func decodeBalances(v interface{}) (interface{}, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("expected object, got %T", v)
	}
	out := make(map[string]Balance, len(obj))
	for account, raw := range obj {
		b, err := decodeBalance(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", account)
		}
		out[account] = b.(Balance)
	}
	return out, nil
}

type Counts struct {
	Count     int64 `json:"count"`
	Unchecked int64 `json:"unchecked"`
}

func decodeCounts(v interface{}) (interface{}, error) {
	fields, err := Fields(map[string]Decoder{"count": Int, "unchecked": Int})(v)
	if err != nil {
		return nil, err
	}
	obj := fields.(map[string]interface{})
	return Counts{
		Count:     obj["count"].(int64),
		Unchecked: obj["unchecked"].(int64),
	}, nil
}

// Encoder shapes one argument value before it is put into the request.
type Encoder func(v interface{}) (interface{}, error)

func AsIs(v interface{}) (interface{}, error) {
	return v, nil
}

// AsString renders integers and amounts the way the node expects them: as decimal strings.
func AsString(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, errors.Errorf("%v is not an integer", val)
		}
		return strconv.FormatInt(int64(val), 10), nil
	case json.Number:
		return val.String(), nil
	case decimal.Decimal:
		return val.String(), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return nil, errors.Errorf("cannot send %T as a string", v)
}

// AsStrings accepts []string or a JSON-decoded list of strings.
func AsStrings(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case []string:
		return val, nil
	case []interface{}:
		out := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("item %d: expected string, got %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.Errorf("expected list of strings, got %T", v)
}
