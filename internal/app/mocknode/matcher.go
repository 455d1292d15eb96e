package mocknode

import (
	"sort"

	"github.com/form3tech-oss/nano-rpc/internal/app/fixtures"
	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	log "github.com/sirupsen/logrus"
)

// Matcher resolves request bodies to fixtures by full structural equality.
type Matcher struct {
	fixtures map[string]fixtures.Fixture
}

func NewMatcher(table fixtures.Table) (*Matcher, error) {
	index, err := table.Index()
	if err != nil {
		return nil, err
	}
	return &Matcher{fixtures: index}, nil
}

// Match returns the fixture whose request equals body, or a mock match error.
func (m *Matcher) Match(body []byte) (fixtures.Fixture, error) {
	key, err := fixtures.Canonical(body)
	if err != nil {
		log.Infof("request is not JSON: %s", body)
		return fixtures.Fixture{}, nanorpc.NewMockMatchError(body)
	}

	f, ok := m.fixtures[key]
	if !ok {
		log.Infof("unable to find fixture to match %s", key)
		return fixtures.Fixture{}, nanorpc.NewMockMatchError(body)
	}
	return f, nil
}

func (m *Matcher) Len() int {
	return len(m.fixtures)
}

// Actions returns the distinct actions served, sorted.
func (m *Matcher) Actions() []string {
	seen := map[string]bool{}
	var names []string
	for _, f := range m.fixtures {
		if !seen[f.Action] {
			seen[f.Action] = true
			names = append(names, f.Action)
		}
	}
	sort.Strings(names)
	return names
}
