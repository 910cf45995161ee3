package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource []byte

// FieldError is one schema violation.
type FieldError struct {
	Path    string
	Message string
	Pos     token.Pos // position in the config file, if known
}

func (e FieldError) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	}
	if e.Path != "" {
		b.WriteString(e.Path + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationError lists every violation found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// schema compiles the embedded #Config definition.
func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// ValidateFile checks a YAML config file against the schema. Errors carry
// the file position of the offending value.
func ValidateFile(filename string, data []byte) error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}

	f, err := cueyaml.Extract(filename, data)
	if err != nil {
		return &ValidationError{Fields: fieldErrors(err, filename)}
	}
	v := ctx.BuildFile(f)
	if err := v.Err(); err != nil {
		return &ValidationError{Fields: fieldErrors(err, filename)}
	}
	return check(def.Unify(v), filename)
}

// Validate checks a merged configuration.
func Validate(cfg Config) error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}
	return check(def.Unify(ctx.Encode(cfg)), "")
}

func check(v cue.Value, filename string) error {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Fields: fieldErrors(err, filename)}
	}
	return nil
}

// fieldErrors flattens a CUE error, preferring positions inside filename
// over positions inside the schema.
func fieldErrors(err error, filename string) []FieldError {
	var out []FieldError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		fe := FieldError{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, p := range cueerrors.Positions(e) {
			if filename != "" && p.Filename() == filename {
				fe.Pos = p
				break
			}
		}
		out = append(out, fe)
	}
	if len(out) == 0 {
		out = append(out, FieldError{Message: err.Error()})
	}
	return out
}
