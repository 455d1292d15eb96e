package nanorpc

import (
	"context"

	"github.com/shopspring/decimal"
)

// Every exported method below wraps the action of the same name in snake_case.

func (c *Client) Version(ctx context.Context) (map[string]interface{}, error) {
	return call[map[string]interface{}](ctx, c, "version", nil)
}

func (c *Client) BlockCount(ctx context.Context) (Counts, error) {
	return call[Counts](ctx, c, "block_count", nil)
}

func (c *Client) FrontierCount(ctx context.Context) (int64, error) {
	return call[int64](ctx, c, "frontier_count", nil)
}

func (c *Client) AccountBalance(ctx context.Context, account string) (Balance, error) {
	return call[Balance](ctx, c, "account_balance", Args{"account": account})
}

func (c *Client) AccountsBalances(ctx context.Context, accounts []string) (map[string]Balance, error) {
	return call[map[string]Balance](ctx, c, "accounts_balances", Args{"accounts": accounts})
}

func (c *Client) AccountBlockCount(ctx context.Context, account string) (int64, error) {
	return call[int64](ctx, c, "account_block_count", Args{"account": account})
}

// AccountKey returns the public key of account.
func (c *Client) AccountKey(ctx context.Context, account string) (string, error) {
	return call[string](ctx, c, "account_key", Args{"account": account})
}

// AccountGet returns the account of a public key.
func (c *Client) AccountGet(ctx context.Context, key string) (string, error) {
	return call[string](ctx, c, "account_get", Args{"key": key})
}

func (c *Client) AccountRepresentative(ctx context.Context, account string) (string, error) {
	return call[string](ctx, c, "account_representative", Args{"account": account})
}

func (c *Client) ValidateAccountNumber(ctx context.Context, account string) (bool, error) {
	return call[bool](ctx, c, "validate_account_number", Args{"account": account})
}

func (c *Client) DelegatorsCount(ctx context.Context, account string) (int64, error) {
	return call[int64](ctx, c, "delegators_count", Args{"account": account})
}

// AccountHistory returns up to count entries; each entry's amount is a decimal.Decimal.
func (c *Client) AccountHistory(ctx context.Context, account string, count int) ([]map[string]interface{}, error) {
	const action = "account_history"
	items, err := call[[]interface{}](ctx, c, action, Args{"account": account, "count": count})
	if err != nil {
		return nil, err
	}
	history := make([]map[string]interface{}, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, transportError(action, nil, "unexpected history entry %T", item)
		}
		history[i] = entry
	}
	return history, nil
}

// Pending returns hashes of up to count pending blocks. A zero threshold is not sent.
func (c *Client) Pending(ctx context.Context, account string, count int, threshold decimal.Decimal) ([]string, error) {
	args := Args{"account": account, "count": count}
	if !threshold.IsZero() {
		args["threshold"] = threshold
	}
	return call[[]string](ctx, c, "pending", args)
}

// call runs action and asserts its decoded result is a T. A result of another type,
// e.g. from an action replaced through WithActions, is a transport error.
func call[T any](ctx context.Context, c *Client, action string, args Args) (T, error) {
	var zero T
	res, err := c.Call(ctx, action, args)
	if err != nil {
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, transportError(action, nil, "unexpected result %T, want %T", res, zero)
	}
	return v, nil
}
