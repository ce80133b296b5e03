package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// LoadMode controls how errors are handled during loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error codes shared by the loader and the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No definition files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeYAMLFailed  = "E007" // YAML decode failed
	ErrCodeInvalidType = "E008" // Field has the wrong type
)

// LoadResult contains the definitions found in a catalog directory.
type LoadResult struct {
	Definitions []Definition
	CUEFiles    []string
	YAMLFiles   []string
}

// FileCount is the number of definition files that were read.
func (r *LoadResult) FileCount() int {
	return len(r.CUEFiles) + len(r.YAMLFiles)
}

// LoadError is an error raised while loading a catalog.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int
}

func (e *LoadError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads every definition file in dir.
//
// A nil result means nothing could be read at all (missing directory, no
// files, CUE instance failure). A non-nil result with errors carries the
// definitions that did load.
func Load(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, yamlFiles, err := FindDefinitionFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE or YAML files found in %s", dir)}}
	}

	result := &LoadResult{CUEFiles: cueFiles, YAMLFiles: yamlFiles}
	var errs []error

	if len(cueFiles) > 0 {
		defs, cueErrs, fatal := loadCUE(dir, mode)
		if fatal != nil {
			return nil, []error{fatal}
		}
		result.Definitions = append(result.Definitions, defs...)
		errs = append(errs, cueErrs...)
		if len(errs) > 0 && mode == LoadModeFailFast {
			return result, errs
		}
	}

	for _, path := range yamlFiles {
		defs, err := loadYAMLFile(path)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Definitions = append(result.Definitions, defs...)
	}

	return result, errs
}

// FindDefinitionFiles lists the CUE and YAML files directly inside dir, each
// sorted lexically. Subdirectories are not searched.
func FindDefinitionFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch filepath.Ext(entry.Name()) {
		case ".cue":
			cueFiles = append(cueFiles, path)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, path)
		}
	}
	sort.Strings(cueFiles)
	sort.Strings(yamlFiles)
	return cueFiles, yamlFiles, nil
}

// IsDefinitionFile reports whether path has an extension Load reads.
func IsDefinitionFile(path string) bool {
	switch filepath.Ext(path) {
	case ".cue", ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(path), ".")
	}
	return false
}

// loadCUE builds the CUE instance in dir and compiles its command struct.
// The third return value is set when the instance itself is unusable.
func loadCUE(dir string, mode LoadMode) ([]Definition, []error, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	commandsVal := value.LookupPath(cue.ParsePath("command"))
	if !commandsVal.Exists() {
		return nil, nil, nil
	}

	iter, err := commandsVal.Fields()
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeInvalidType, Message: fmt.Sprintf("command must be a struct: %v", err)}
	}

	var (
		defs []Definition
		errs []error
	)
	for iter.Next() {
		def, err := compileDefinition(iter.Label(), iter.Value())
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return defs, errs, nil
			}
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs, nil
}

// compileDefinition reads one command struct. Missing optional fields are
// left empty; content rules are enforced by Validate.
func compileDefinition(name string, v cue.Value) (Definition, error) {
	def := Definition{Name: name}
	if pos := v.Pos(); pos.IsValid() {
		def.Source = pos.Filename()
		def.Line = pos.Line()
	}

	var err error
	if def.Description, err = optionalString(v, "description"); err != nil {
		return def, err
	}
	if def.Agent, err = optionalString(v, "agent"); err != nil {
		return def, err
	}
	if def.SampleRequest, err = optionalString(v, "sample_request"); err != nil {
		return def, err
	}
	if def.When, err = optionalString(v, "when"); err != nil {
		return def, err
	}

	yieldsVal := v.LookupPath(cue.ParsePath("yields_to"))
	if yieldsVal.Exists() {
		list, err := yieldsVal.List()
		if err != nil {
			return def, fieldError(name, "yields_to", "must be a list of strings", yieldsVal.Pos())
		}
		for list.Next() {
			s, err := list.Value().String()
			if err != nil {
				return def, fieldError(name, "yields_to", "must be a list of strings", list.Value().Pos())
			}
			def.YieldsTo = append(def.YieldsTo, s)
		}
	}

	return def, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func fieldError(command, field, message string, pos token.Pos) *LoadError {
	e := &LoadError{
		Code:    ErrCodeInvalidType,
		Message: fmt.Sprintf("command %s: %s %s", command, field, message),
	}
	if pos.IsValid() {
		e.File = pos.Filename()
		e.Line = pos.Line()
	}
	return e
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: ErrCodeInvalidType, Message: err.Error()}
	}
	first := errs[0]
	e := &LoadError{Code: ErrCodeInvalidType, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.File = positions[0].Filename()
		e.Line = positions[0].Line()
	}
	return e
}

// yamlCatalog is the document shape of a YAML catalog file. Entries are kept
// as nodes so each definition can record its line.
type yamlCatalog struct {
	Commands []yaml.Node `yaml:"commands"`
}

func loadYAMLFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeYAMLFailed, Message: err.Error(), File: path}
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeYAMLFailed, Message: err.Error(), File: path}
	}

	defs := make([]Definition, 0, len(doc.Commands))
	for i := range doc.Commands {
		node := &doc.Commands[i]
		if err := checkYAMLTypes(node, path); err != nil {
			return nil, err
		}
		var def Definition
		if err := node.Decode(&def); err != nil {
			return nil, &LoadError{Code: ErrCodeYAMLFailed, Message: err.Error(), File: path, Line: node.Line}
		}
		def.Source = path
		def.Line = node.Line
		defs = append(defs, def)
	}
	return defs, nil
}

// yamlStringFields are the definition keys that must hold strings.
var yamlStringFields = map[string]bool{
	"name":           true,
	"description":    true,
	"agent":          true,
	"sample_request": true,
	"when":           true,
}

// checkYAMLTypes rejects scalars that yaml.v3 would coerce into string
// fields, such as a numeric description. Null values are left to Decode.
func checkYAMLTypes(node *yaml.Node, path string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	name := "<unnamed>"
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k, v := node.Content[i], node.Content[i+1]; k.Value == "name" && isYAMLString(v) {
			name = v.Value
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch {
		case yamlStringFields[key.Value]:
			if !isYAMLString(value) && !isYAMLNull(value) {
				return yamlFieldError(name, key.Value, "must be a string", path, value.Line)
			}
		case key.Value == "yields_to":
			if isYAMLNull(value) {
				continue
			}
			if value.Kind != yaml.SequenceNode {
				return yamlFieldError(name, key.Value, "must be a list of strings", path, value.Line)
			}
			for _, item := range value.Content {
				if !isYAMLString(item) {
					return yamlFieldError(name, key.Value, "must be a list of strings", path, item.Line)
				}
			}
		}
	}
	return nil
}

func isYAMLString(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!str"
}

func isYAMLNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func yamlFieldError(command, field, message, path string, line int) *LoadError {
	return &LoadError{
		Code:    ErrCodeInvalidType,
		Message: fmt.Sprintf("command %s: %s %s", command, field, message),
		File:    path,
		Line:    line,
	}
}
