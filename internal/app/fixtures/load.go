package fixtures

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed corpus/*.json
var corpus embed.FS

var requiredFields = []string{"expected", "request", "response"}

// LoadDefault loads the corpus shipped with the module.
func LoadDefault() (Table, error) {
	sub, err := fs.Sub(corpus, "corpus")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded corpus")
	}
	return Load(sub)
}

func LoadDir(dir string) (Table, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrap(err, "open corpus")
	}
	return Load(os.DirFS(dir))
}

// Load reads every *.json file at the root of fsys, in name order. Each file maps action
// names to lists of scenarios; lists of the same action are concatenated.
func Load(fsys fs.FS) (Table, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, errors.Wrap(err, "list corpus files")
	}
	if len(names) == 0 {
		return nil, errors.New("no corpus files found")
	}
	sort.Strings(names)

	table := Table{}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		if err := Parse(data, table); err != nil {
			return nil, errors.Wrapf(err, "load %s", path.Base(name))
		}
	}

	if _, err := table.Index(); err != nil {
		return nil, err
	}

	log.Infof("loaded %d fixtures for %d actions", table.Len(), len(table))
	return table, nil
}

// Parse adds the scenarios of one corpus document to table.
func Parse(data []byte, table Table) error {
	var doc map[string][]map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "unable to parse corpus")
	}

	actions := make([]string, 0, len(doc))
	for action := range doc {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, record := range doc[action] {
			f, err := parseScenario(action, record)
			if err != nil {
				return err
			}
			table.Add(f)
		}
	}
	return nil
}

func parseScenario(action string, record map[string]json.RawMessage) (Fixture, error) {
	for _, field := range requiredFields {
		if _, ok := record[field]; !ok {
			return Fixture{}, invalidScenario(action, record, "missing %q", field)
		}
	}

	f := Fixture{
		Action:   action,
		Args:     nanorpc.Args{},
		Expected: record["expected"],
		Request:  record["request"],
		Response: record["response"],
	}
	if raw, ok := record["args"]; ok && string(raw) != "null" {
		v, err := decodeJSON(raw)
		if err != nil {
			return Fixture{}, invalidScenario(action, record, "args: %s", err)
		}
		args, ok := v.(map[string]interface{})
		if !ok {
			return Fixture{}, invalidScenario(action, record, "args: expected object, got %T", v)
		}
		f.Args = args
	}
	return f, nil
}

func invalidScenario(action string, record map[string]json.RawMessage, format string, args ...interface{}) error {
	dump, _ := json.Marshal(record)
	return errors.Wrapf(ErrInvalidScenario, "for %s (%s): %s", action, errors.Errorf(format, args...), indent(dump))
}
