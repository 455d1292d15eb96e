package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/form3tech-oss/nano-rpc/internal/app/fixtures"
	"github.com/form3tech-oss/nano-rpc/internal/app/mocknode"
	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

// methods of the client that are not remote actions
var clientPlumbing = []string{"Call", "Host", "Transport", "Action", "Actions"}

type RPCStage struct {
	t         *testing.T
	assert    *assert.Assertions
	require   *require.Assertions
	table     fixtures.Table
	actions   []nanorpc.Action
	transport *mocknode.Transport
	client    *nanorpc.Client
	server    *httptest.Server
	results   []interface{}
	errs      []error
	coverage  error
}

func NewRPCStage(t *testing.T) (*RPCStage, *RPCStage, *RPCStage) {
	s := &RPCStage{
		t:       t,
		assert:  assert.New(t),
		require: require.New(t),
	}

	s.t.Cleanup(func() {
		if s.server != nil {
			s.server.Close()
		}
	})

	return s, s, s
}

func (s *RPCStage) and() *RPCStage {
	return s
}

func (s *RPCStage) the_default_fixture_corpus() *RPCStage {
	table, err := fixtures.LoadDefault()
	s.require.NoError(err)
	s.table = table
	return s
}

func (s *RPCStage) a_fixture_for_a_hypothetical_add_action() *RPCStage {
	if s.table == nil {
		s.table = fixtures.Table{}
	}
	s.table.Add(fixtures.Fixture{
		Action:   "add",
		Args:     nanorpc.Args{"values": []interface{}{float64(3), float64(2)}},
		Expected: json.RawMessage(`5`),
		Request:  json.RawMessage(`{"add": [3, 2]}`),
		Response: json.RawMessage(`"5"`),
	})
	s.actions = append(s.actions, nanorpc.Action{
		Name:   "add",
		Params: []nanorpc.Param{{Name: "values", Key: "add", Required: true}},
		Shape: func(body []byte) ([]byte, error) {
			return sjson.DeleteBytes(body, "action")
		},
		Decode: nanorpc.Int,
	})
	return s
}

func (s *RPCStage) the_fixtures_for_action_are_removed(action string) *RPCStage {
	delete(s.table, action)
	return s
}

func (s *RPCStage) a_client_on_the_mock_transport() *RPCStage {
	matcher, err := mocknode.NewMatcher(s.table)
	s.require.NoError(err)
	s.transport = mocknode.NewTransport(matcher)
	s.client = nanorpc.New("mock://localhost:7076/",
		nanorpc.WithTransport(s.transport),
		nanorpc.WithActions(s.actions...),
	)
	return s
}

func (s *RPCStage) a_client_on_a_mock_node_over_http() *RPCStage {
	matcher, err := mocknode.NewMatcher(s.table)
	s.require.NoError(err)
	s.transport = mocknode.NewTransport(matcher)
	s.server = httptest.NewServer(mocknode.NewServer(s.transport))
	s.client = nanorpc.New(s.server.URL+"/",
		nanorpc.WithTransport(nanorpc.NewHTTPTransport(nanorpc.HTTPConfig{})),
		nanorpc.WithActions(s.actions...),
	)
	return s
}

func (s *RPCStage) every_fixture_is_verified() *RPCStage {
	for _, action := range s.table.Actions() {
		for _, f := range s.table[action] {
			s.errs = append(s.errs, fixtures.Verify(context.Background(), s.client, s.transport, f))
		}
	}
	return s
}

func (s *RPCStage) every_fixture_is_run_through_its_typed_method() *RPCStage {
	ctx := context.Background()
	for _, action := range s.table.Actions() {
		method, ok := typedMethods[action]
		s.require.True(ok, "no typed method for %s", action)

		for _, f := range s.table[action] {
			s.errs = append(s.errs, s.checkTypedCall(ctx, method, f))
		}
	}
	return s
}

func (s *RPCStage) checkTypedCall(ctx context.Context, method typedMethod, f fixtures.Fixture) error {
	result, err := method(ctx, s.client, f.Args)
	if f.IsError() {
		if !nanorpc.IsRemote(err) {
			return errors.Wrapf(fixtures.ErrExpectedError, "%s: got %v", f.Action, err)
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, f.Action)
	}
	if !fixtures.Equal(s.transport.LastRequest(), f.Request) {
		return errors.Wrapf(fixtures.ErrRequestMismatch, "%s sent %s", f.Action, s.transport.LastRequest())
	}
	got, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, f.Action)
	}
	if !fixtures.Equal(got, f.Expected) {
		return errors.Wrapf(fixtures.ErrResultMismatch, "%s returned %s", f.Action, got)
	}
	return nil
}

func (s *RPCStage) the_action_is_called(action string, args nanorpc.Args) *RPCStage {
	res, err := s.client.Call(context.Background(), action, args)
	s.results = append(s.results, res)
	s.errs = append(s.errs, err)
	return s
}

func (s *RPCStage) the_account_balance_of_is_requested(account string) *RPCStage {
	res, err := s.client.AccountBalance(context.Background(), account)
	s.results = append(s.results, res)
	s.errs = append(s.errs, err)
	return s
}

func (s *RPCStage) coverage_is_checked() *RPCStage {
	actions := append(fixtures.MethodActions(s.client, clientPlumbing...), s.client.Actions()...)
	s.coverage = fixtures.Coverage(s.table, actions)
	return s
}

func (s *RPCStage) no_fixture_failed() *RPCStage {
	s.require.NotEmpty(s.errs)
	for _, err := range s.errs {
		s.assert.NoError(err)
	}
	return s
}

func (s *RPCStage) the_call_succeeded() *RPCStage {
	s.require.NoError(s.errs[len(s.errs)-1])
	return s
}

func (s *RPCStage) the_call_failed_with(kind nanorpc.Kind) *RPCStage {
	err := s.errs[len(s.errs)-1]
	s.require.Error(err)
	s.assert.Equal(kind, nanorpc.KindOf(err), "got %v", err)
	return s
}

func (s *RPCStage) the_request_sent_was(request string) *RPCStage {
	s.assert.JSONEq(request, string(s.transport.LastRequest()))
	return s
}

func (s *RPCStage) the_result_was(expected string) *RPCStage {
	got, err := json.Marshal(s.results[len(s.results)-1])
	s.require.NoError(err)
	s.assert.JSONEq(expected, string(got))
	return s
}

func (s *RPCStage) all_results_are_equal() *RPCStage {
	s.require.NotEmpty(s.results)
	for _, res := range s.results[1:] {
		s.assert.Equal(s.results[0], res)
	}
	return s
}

func (s *RPCStage) mock_node_served_requests(count int) *RPCStage {
	s.assert.Equal(count, s.transport.RequestCount())
	return s
}

func (s *RPCStage) every_client_method_has_a_typed_driver() *RPCStage {
	for _, action := range fixtures.MethodActions(s.client, clientPlumbing...) {
		s.assert.Contains(typedMethods, action)
	}
	return s
}

func (s *RPCStage) every_client_method_has_fixtures() *RPCStage {
	s.assert.NoError(s.coverage)
	return s
}

func (s *RPCStage) coverage_fails_naming(action string) *RPCStage {
	s.require.ErrorIs(s.coverage, fixtures.ErrUntested)
	s.assert.Contains(s.coverage.Error(), "`"+action+"`")
	return s
}
