package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DependencyType is the relationship kind of a record dependency.
type DependencyType string

const (
	DepDerivedFrom DependencyType = "der"
	DepComponentOf DependencyType = "comp"
	DepNewVersion  DependencyType = "ver"
)

// ParseDependencyType accepts the short DataFed names.
func ParseDependencyType(s string) (DependencyType, error) {
	switch DependencyType(strings.ToLower(strings.TrimSpace(s))) {
	case DepDerivedFrom:
		return DepDerivedFrom, nil
	case DepComponentOf:
		return DepComponentOf, nil
	case DepNewVersion:
		return DepNewVersion, nil
	default:
		return "", &OpError{
			Op:   "dependency.parse",
			Kind: KindInvalidArgument,
			Err:  fmt.Errorf("unknown dependency type %q (expected der|comp|ver): %w", s, ErrInvalidArgument),
		}
	}
}

// Dependency links a record to a target record id or alias.
type Dependency struct {
	Type   DependencyType
	Target string
}

// RecordOptions holds the optional fields of "data create" and "data update".
// Blank strings are treated as unset.
type RecordOptions struct {
	Title        string // update only; create takes the title positionally
	Alias        string
	Description  string
	Keywords     []string
	Collection   string // create only
	Repository   string // create only
	Project      string // update only
	RawDataFile  string
	Extension    string
	MetadataFile string
	Metadata     map[string]any

	AddDependencies    []Dependency
	RemoveDependencies []Dependency // update only
	ClearDependencies  bool         // update only
}

// CleanedAlias reports the alias that will be sent and whether cleaning changed it.
func (o RecordOptions) CleanedAlias() (alias string, changed bool) {
	if strings.TrimSpace(o.Alias) == "" {
		return "", false
	}
	alias = CleanAlias(o.Alias)
	return alias, alias != o.Alias
}

// CreateArgs builds the argument vector of "data create".
func (o RecordOptions) CreateArgs(title string) ([]string, error) {
	t, err := ValidateString(title, "title")
	if err != nil {
		return nil, err
	}

	args := []string{"data", "create", t}
	common, err := o.commonArgs()
	if err != nil {
		return nil, err
	}
	args = append(args, common...)

	if c := strings.TrimSpace(o.Collection); c != "" {
		args = append(args, "-c", c)
	}
	if r := strings.TrimSpace(o.Repository); r != "" {
		args = append(args, "-R", r)
	}
	deps, err := depArgs("-D", o.AddDependencies)
	if err != nil {
		return nil, err
	}
	return append(args, deps...), nil
}

// UpdateArgs builds the argument vector of "data update" for record id.
func (o RecordOptions) UpdateArgs(id string) ([]string, error) {
	rid, err := ValidateString(id, "record id")
	if err != nil {
		return nil, err
	}

	var opts []string
	if t := strings.TrimSpace(o.Title); t != "" {
		opts = append(opts, "-t", t)
	}
	common, err := o.commonArgs()
	if err != nil {
		return nil, err
	}
	opts = append(opts, common...)

	if o.ClearDependencies {
		opts = append(opts, "-C")
	}
	add, err := depArgs("-A", o.AddDependencies)
	if err != nil {
		return nil, err
	}
	rem, err := depArgs("-R", o.RemoveDependencies)
	if err != nil {
		return nil, err
	}
	opts = append(opts, add...)
	opts = append(opts, rem...)

	if len(opts) == 0 {
		return nil, &OpError{
			Op:   "records.update",
			Kind: KindInvalidArgument,
			Path: rid,
			Err:  ErrNothingToUpdate,
		}
	}

	// Project is scoping, not an update on its own.
	if p := strings.TrimSpace(o.Project); p != "" {
		opts = append(opts, "-p", p)
	}

	args := append([]string{"data", "update"}, opts...)
	return append(args, rid), nil
}

func (o RecordOptions) commonArgs() ([]string, error) {
	var args []string

	if alias, _ := o.CleanedAlias(); alias != "" {
		args = append(args, "-a", alias)
	}
	if d := strings.TrimSpace(o.Description); d != "" {
		args = append(args, "-d", d)
	}
	if len(o.Keywords) > 0 {
		kw, err := ValidateStrings(o.Keywords, "keywords")
		if err != nil {
			return nil, err
		}
		args = append(args, "-k", strings.Join(kw, ","))
	}
	if r := strings.TrimSpace(o.RawDataFile); r != "" {
		args = append(args, "-r", r)
	}
	if e := strings.TrimSpace(o.Extension); e != "" {
		args = append(args, "-e", e)
	}

	file := strings.TrimSpace(o.MetadataFile)
	switch {
	case file != "" && o.Metadata != nil:
		return nil, &OpError{
			Op:   "records.options",
			Kind: KindInvalidArgument,
			Path: file,
			Err:  fmt.Errorf("metadata must be either a JSON file or an inline document, not both: %w", ErrInvalidArgument),
		}
	case file != "":
		args = append(args, "-f", file)
	case o.Metadata != nil:
		b, err := json.Marshal(o.Metadata)
		if err != nil {
			return nil, &OpError{
				Op:   "records.options",
				Kind: KindInvalidArgument,
				Err:  fmt.Errorf("encode inline metadata: %w", err),
			}
		}
		args = append(args, "-m", string(b))
	}

	return args, nil
}

func depArgs(flag string, deps []Dependency) ([]string, error) {
	var out []string
	for _, d := range deps {
		typ, err := ParseDependencyType(string(d.Type))
		if err != nil {
			return nil, err
		}
		target, err := ValidateString(d.Target, "dependency target")
		if err != nil {
			return nil, err
		}
		out = append(out, flag, string(typ), target)
	}
	return out, nil
}
