package nanorpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const DefaultHost = "http://localhost:7076"

// Args are the keyword arguments of a call.
type Args map[string]interface{}

type Client struct {
	host      string
	transport Transport
	actions   actionTable
	log       *log.Entry
}

type Option func(*Client)

// WithTransport replaces the default live HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithActions declares extra actions, replacing node actions of the same name.
func WithActions(actions ...Action) Option {
	return func(c *Client) {
		for _, a := range actions {
			c.actions[a.Name] = a
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.log = log.NewEntry(logger)
	}
}

// New creates a client for the node at host. An empty host means DefaultHost.
func New(host string, opts ...Option) *Client {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}

	c := &Client{
		host:    host,
		actions: newActionTable(nodeActions),
		log:     log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(HTTPConfig{})
	}
	c.log = c.log.WithField("host", c.host)
	return c
}

func (c *Client) Host() string {
	return c.host
}

func (c *Client) Transport() Transport {
	return c.transport
}

// Action looks up a declared action.
func (c *Client) Action(name string) (Action, bool) {
	a, ok := c.actions[name]
	return a, ok
}

// Actions lists the names of all declared actions.
func (c *Client) Actions() []string {
	return c.actions.names()
}

// Call dispatches action with args and decodes the result. Declared actions have their
// arguments validated and their result decoded; any other action is sent as
// {"action": action, **args} and its response returned as decoded JSON.
func (c *Client) Call(ctx context.Context, action string, args Args) (interface{}, error) {
	if action == "" {
		return nil, invalidArgument("", "action is required")
	}

	decl, declared := c.actions[action]
	if !declared {
		decl = Action{Name: action, Decode: Raw}
	}

	body, err := buildRequest(decl, args, declared)
	if err != nil {
		return nil, err
	}

	logger := c.log.WithField("action", action)
	logger.Debug("dispatching call")

	res, err := c.transport.Send(ctx, c.host, body)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, transportError(action, err, "send request")
	}
	if res == nil {
		return nil, transportError(action, nil, "transport returned no response")
	}

	var response interface{}
	if err := json.Unmarshal(res.Body, &response); err != nil {
		if res.StatusCode != 0 && (res.StatusCode < 200 || res.StatusCode >= 300) {
			return nil, transportError(action, err, "node answered %d %s", res.StatusCode, http.StatusText(res.StatusCode))
		}
		return nil, transportError(action, err, "response is not valid JSON")
	}

	if msg := gjson.GetBytes(res.Body, "error"); msg.Exists() && gjson.ParseBytes(res.Body).IsObject() {
		logger.Debugf("node returned error %q", msg.String())
		return nil, remoteError(action, msg.String(), res.Body)
	}
	if res.StatusCode != 0 && (res.StatusCode < 200 || res.StatusCode >= 300) {
		e := transportError(action, nil, "node answered %d %s", res.StatusCode, http.StatusText(res.StatusCode))
		e.Body = res.Body
		return nil, e
	}

	decode := decl.Decode
	if decode == nil {
		decode = Raw
	}
	result, err := decode(response)
	if err != nil {
		e := transportError(action, err, "unexpected response shape")
		e.Body = res.Body
		return nil, e
	}
	return result, nil
}

const actionKey = "action"

func buildRequest(a Action, args Args, declared bool) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), actionKey, a.Name)
	if err != nil {
		return nil, invalidArgument(a.Name, "set action: %s", err)
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key, value := name, args[name]
		if declared {
			p, ok := a.param(name)
			if !ok {
				return nil, invalidArgument(a.Name, "unexpected argument %q", name)
			}
			key = p.key()
			encode := p.Encode
			if encode == nil {
				encode = AsIs
			}
			if value, err = encode(value); err != nil {
				return nil, invalidArgument(a.Name, "argument %q: %s", name, err)
			}
		}
		if key == actionKey {
			return nil, invalidArgument(a.Name, "argument %q would replace the action", name)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, invalidArgument(a.Name, "argument %q is not JSON serialisable: %s", name, err)
		}
		if body, err = sjson.SetRawBytes(body, escapePath(key), raw); err != nil {
			return nil, invalidArgument(a.Name, "set argument %q: %s", name, err)
		}
	}

	if declared {
		for _, p := range a.Params {
			if _, ok := args[p.Name]; p.Required && !ok {
				return nil, invalidArgument(a.Name, "missing required argument %q", p.Name)
			}
		}
	}

	if a.Shape != nil {
		if body, err = a.Shape(body); err != nil {
			return nil, invalidArgument(a.Name, "shape request: %s", err)
		}
	}
	return body, nil
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

// escapePath makes a plain field name safe to use as an sjson path.
func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
