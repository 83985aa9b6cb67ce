// Package flowsheet reads and writes project files: a YAML document listing
// every material, unit, stream and piece of equipment of one project, its
// network-level heat and water entities and its reactions.
//
// Loading checks a file in two stages. The document is first unified with
// the embedded CUE #Project schema, which catches unknown fields, enum
// values and out-of-range numbers. The decoded project is then checked for
// what the schema cannot express: composition sums, duplicate ids and
// references between entities.
package flowsheet

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/virmuran/ProcessDesignPro/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Project is the content of one project file.
type Project struct {
	Name           string                `json:"name" yaml:"name"`
	Description    string                `json:"description,omitempty" yaml:"description,omitempty"`
	Materials      []model.Material      `json:"materials,omitempty" yaml:"materials,omitempty"`
	Units          []model.ProcessUnit   `json:"units,omitempty" yaml:"units,omitempty"`
	Streams        []model.Stream        `json:"streams,omitempty" yaml:"streams,omitempty"`
	Equipment      []model.Equipment     `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	HeatStreams    []model.HeatStream    `json:"heat_streams,omitempty" yaml:"heat_streams,omitempty"`
	HeatExchangers []model.HeatExchanger `json:"heat_exchangers,omitempty" yaml:"heat_exchangers,omitempty"`
	WaterStreams   []model.WaterStream   `json:"water_streams,omitempty" yaml:"water_streams,omitempty"`
	TreatmentUnits []model.TreatmentUnit `json:"treatment_units,omitempty" yaml:"treatment_units,omitempty"`
	Reactions      []model.Reaction      `json:"reactions,omitempty" yaml:"reactions,omitempty"`
}

// ErrorCode classifies a project file error.
type ErrorCode string

const (
	ErrCodeRead    ErrorCode = "READ"
	ErrCodeParse   ErrorCode = "PARSE"
	ErrCodeSchema  ErrorCode = "SCHEMA"
	ErrCodeInvalid ErrorCode = "INVALID"
)

// LoadError reports a project file that cannot be used.
type LoadError struct {
	Code    ErrorCode
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsSchemaError reports whether err is a schema violation.
func IsSchemaError(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeSchema
}

// IsInvalid reports whether err is a semantic validation failure.
func IsInvalid(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeInvalid
}

// Load reads and validates the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, File: path, Message: "read project file", Err: err}
	}
	p, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.File == "" {
			le.File = path
		}
		return nil, err
	}
	return p, nil
}

// Parse validates a project document and decodes it.
func Parse(data []byte) (*Project, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: "decode yaml", Err: err}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeParse, Message: "decode project", Err: err}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkSchema(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: "compile schema", Err: err}
	}
	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: "encode document", Err: err}
	}
	v := schema.LookupPath(cue.ParsePath("#Project")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: schemaMessage(err)}
	}
	return nil
}

// schemaMessage flattens CUE errors into one line per violation.
func schemaMessage(err error) string {
	var lines []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	if len(lines) == 0 {
		return err.Error()
	}
	return strings.Join(lines, "; ")
}

// Validate checks what the schema cannot: entity invariants, unique ids and
// references between entities.
func (p *Project) Validate() error {
	seen := map[string]map[string]bool{}
	unique := func(kind, id string) error {
		if seen[kind] == nil {
			seen[kind] = map[string]bool{}
		}
		if seen[kind][id] {
			return invalidf("duplicate %s id %q", kind, id)
		}
		seen[kind][id] = true
		return nil
	}

	for _, m := range p.Materials {
		if err := m.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("material", m.ID); err != nil {
			return err
		}
	}
	for _, u := range p.Units {
		if err := u.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("unit", u.ID); err != nil {
			return err
		}
	}
	for _, s := range p.Streams {
		if err := s.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("stream", s.ID); err != nil {
			return err
		}
		for _, end := range s.Endpoints() {
			if !seen["unit"][end] {
				return invalidf("stream %q references undeclared unit %q", s.ID, end)
			}
		}
	}
	for _, e := range p.Equipment {
		if err := e.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("equipment", e.ID); err != nil {
			return err
		}
		if src := e.SourceUnit(); src != "" && !seen["unit"][src] {
			return invalidf("equipment %q references undeclared unit %q", e.ID, src)
		}
	}
	for _, h := range p.HeatStreams {
		if err := h.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("heat stream", h.ID); err != nil {
			return err
		}
	}
	for _, x := range p.HeatExchangers {
		if err := x.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("heat exchanger", x.ID); err != nil {
			return err
		}
		for _, ref := range []string{x.HotStream, x.ColdStream} {
			if !seen["heat stream"][ref] {
				return invalidf("heat exchanger %q references undeclared heat stream %q", x.ID, ref)
			}
		}
	}
	for _, w := range p.WaterStreams {
		if err := w.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("water stream", w.ID); err != nil {
			return err
		}
	}
	for _, t := range p.TreatmentUnits {
		if err := t.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("treatment unit", t.ID); err != nil {
			return err
		}
		for _, ref := range append(append([]string{}, t.InletStreams...), t.OutletStreams...) {
			if !seen["water stream"][ref] {
				return invalidf("treatment unit %q references undeclared water stream %q", t.ID, ref)
			}
		}
	}
	for _, r := range p.Reactions {
		if err := r.Validate(); err != nil {
			return invalid(err)
		}
		if err := unique("reaction", r.ID); err != nil {
			return err
		}
		for _, id := range append(r.Reactants(), r.Products()...) {
			if !seen["material"][id] {
				return invalidf("reaction %q references undeclared material %q", r.ID, id)
			}
		}
	}
	return nil
}

func invalid(err error) error {
	return &LoadError{Code: ErrCodeInvalid, Message: "invalid project", Err: err}
}

func invalidf(format string, args ...any) error {
	return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// Marshal renders the project as YAML.
func (p *Project) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return buf.Bytes(), nil
}
