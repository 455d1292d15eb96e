package app

import (
	"context"
	"encoding/json"

	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/shopspring/decimal"
)

type typedMethod func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error)

// typedMethods drives each exported client method with the args of a fixture.
var typedMethods = map[string]typedMethod{
	"version": func(ctx context.Context, c *nanorpc.Client, _ nanorpc.Args) (interface{}, error) {
		return c.Version(ctx)
	},
	"block_count": func(ctx context.Context, c *nanorpc.Client, _ nanorpc.Args) (interface{}, error) {
		return c.BlockCount(ctx)
	},
	"frontier_count": func(ctx context.Context, c *nanorpc.Client, _ nanorpc.Args) (interface{}, error) {
		return c.FrontierCount(ctx)
	},
	"account_balance": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountBalance(ctx, argString(args, "account"))
	},
	"accounts_balances": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountsBalances(ctx, argStrings(args, "accounts"))
	},
	"account_block_count": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountBlockCount(ctx, argString(args, "account"))
	},
	"account_key": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountKey(ctx, argString(args, "account"))
	},
	"account_get": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountGet(ctx, argString(args, "key"))
	},
	"account_representative": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountRepresentative(ctx, argString(args, "account"))
	},
	"validate_account_number": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.ValidateAccountNumber(ctx, argString(args, "account"))
	},
	"delegators_count": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.DelegatorsCount(ctx, argString(args, "account"))
	},
	"account_history": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.AccountHistory(ctx, argString(args, "account"), argInt(args, "count"))
	},
	"pending": func(ctx context.Context, c *nanorpc.Client, args nanorpc.Args) (interface{}, error) {
		return c.Pending(ctx, argString(args, "account"), argInt(args, "count"), argAmount(args, "threshold"))
	},
}

func argString(args nanorpc.Args, name string) string {
	s, _ := args[name].(string)
	return s
}

func argStrings(args nanorpc.Args, name string) []string {
	items, _ := args[name].([]interface{})
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item.(string)
	}
	return out
}

func argInt(args nanorpc.Args, name string) int {
	n, _ := args[name].(json.Number)
	v, _ := n.Int64()
	return int(v)
}

func argAmount(args nanorpc.Args, name string) decimal.Decimal {
	s, ok := args[name].(string)
	if !ok {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}
