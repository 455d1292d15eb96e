package nanorpc

import "sort"

// Param declares one argument of an action.
type Param struct {
	Name string
	// Key is the request field the argument is sent under; Name when empty.
	Key      string
	Required bool
	Encode   Encoder
}

func (p Param) key() string {
	if p.Key == "" {
		return p.Name
	}
	return p.Key
}

// Action declares a remote procedure: its arguments, how the request is shaped and how the
// result is decoded. Declaring one is all it takes to make it callable through Client.Call.
type Action struct {
	Name   string
	Params []Param
	// Shape, when set, rewrites the request body built from Params.
	Shape  func(body []byte) ([]byte, error)
	Decode Decoder
}

func (a Action) param(name string) (Param, bool) {
	for _, p := range a.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func required(name string, encode Encoder) Param {
	return Param{Name: name, Required: true, Encode: encode}
}

func optional(name string, encode Encoder) Param {
	return Param{Name: name, Encode: encode}
}

var nodeActions = []Action{
	{
		Name:   "version",
		Decode: Raw,
	},
	{
		Name:   "block_count",
		Decode: decodeCounts,
	},
	{
		Name:   "frontier_count",
		Decode: Path("$.count", Int),
	},
	{
		Name:   "account_balance",
		Params: []Param{required("account", String)},
		Decode: decodeBalance,
	},
	{
		Name:   "accounts_balances",
		Params: []Param{required("accounts", AsStrings)},
		Decode: Path("$.balances", decodeBalances),
	},
	{
		Name:   "account_block_count",
		Params: []Param{required("account", String)},
		Decode: Path("$.block_count", Int),
	},
	{
		Name:   "account_key",
		Params: []Param{required("account", String)},
		Decode: Path("$.key", String),
	},
	{
		Name:   "account_get",
		Params: []Param{required("key", String)},
		Decode: Path("$.account", String),
	},
	{
		Name:   "account_representative",
		Params: []Param{required("account", String)},
		Decode: Path("$.representative", String),
	},
	{
		Name:   "validate_account_number",
		Params: []Param{required("account", String)},
		Decode: Path("$.valid", Bool),
	},
	{
		Name:   "delegators_count",
		Params: []Param{required("account", String)},
		Decode: Path("$.count", Int),
	},
	{
		Name: "account_history",
		Params: []Param{
			required("account", String),
			required("count", AsString),
		},
		Decode: Path("$.history", Each(Fields(map[string]Decoder{"amount": Amount}))),
	},
	{
		Name: "pending",
		Params: []Param{
			required("account", String),
			required("count", AsString),
			optional("threshold", AsString),
		},
		Decode: Path("$.blocks", Strings),
	},
}

// NodeActions returns the actions of a Nano node known to the client.
func NodeActions() []Action {
	return append([]Action(nil), nodeActions...)
}

type actionTable map[string]Action

func newActionTable(actions ...[]Action) actionTable {
	t := actionTable{}
	for _, list := range actions {
		for _, a := range list {
			t[a.Name] = a
		}
	}
	return t
}

func (t actionTable) names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
