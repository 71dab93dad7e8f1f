package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
	"github.com/zowe/zss/internal/stubs"
)

// Manifest is a loaded zisstub.toml.
type Manifest struct {
	Path      string
	Root      string
	Generator Generator
	Targets   []Target
}

// Generator holds the [generator] table.
type Generator struct {
	Header   string
	Encoding source.Encoding
	Strict   bool
	Cache    bool
}

// Target is one [[target]] entry with its modes already parsed.
type Target struct {
	Name     string
	Output   string
	Mode     stubs.OutputMode
	Dispatch stubs.DispatchMode
}

type manifestFile struct {
	Generator generatorConfig `toml:"generator"`
	Targets   []targetConfig  `toml:"target"`
}

type generatorConfig struct {
	Header   string `toml:"header"`
	Encoding string `toml:"encoding"`
	Strict   bool   `toml:"strict"`
	Cache    bool   `toml:"cache"`
}

type targetConfig struct {
	Name     string `toml:"name"`
	Command  string `toml:"command"`
	Dispatch string `toml:"dispatch"`
	Output   string `toml:"output"`
}

// ManifestError is a problem with zisstub.toml. Line is 1-based, or 0 when
// the position is unknown.
type ManifestError struct {
	Path string
	Line int
	Code diag.Code
	Msg  string
	Err  error
}

func (e *ManifestError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Code: diag.PrjBadManifest, Msg: "failed to read manifest", Err: err}
	}
	var cfg manifestFile
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, &ManifestError{Path: path, Line: perr.Position.Line, Code: diag.PrjBadManifest,
				Msg: "failed to parse TOML: " + perr.Message, Err: err}
		}
		return nil, &ManifestError{Path: path, Code: diag.PrjBadManifest, Msg: "failed to decode manifest", Err: err}
	}

	loc := newKeyLocator(data)
	fail := func(code diag.Code, line int, format string, args ...any) error {
		return &ManifestError{Path: path, Line: line, Code: code, Msg: fmt.Sprintf(format, args...)}
	}
	bad := func(line int, format string, args ...any) error {
		return fail(diag.PrjBadManifest, line, format, args...)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		key := undecoded[0]
		line := 0
		if len(key) == 2 {
			line = loc.line(key[0], anyOrdinal, key[1])
		}
		return nil, bad(line, "unknown key %s", key.String())
	}
	if !meta.IsDefined("generator") {
		return nil, bad(0, "missing [generator]")
	}
	if !meta.IsDefined("generator", "header") || strings.TrimSpace(cfg.Generator.Header) == "" {
		return nil, bad(loc.line("generator", 0, "header"), "missing [generator].header")
	}
	enc, err := source.ParseEncoding(cfg.Generator.Encoding)
	if err != nil {
		return nil, bad(loc.line("generator", 0, "encoding"), "[generator].encoding: %v", err)
	}

	root := filepath.Dir(path)
	m := &Manifest{
		Path: path,
		Root: root,
		Generator: Generator{
			Header:   resolve(root, cfg.Generator.Header),
			Encoding: enc,
			Strict:   true,
			Cache:    cfg.Generator.Cache,
		},
		Targets: make([]Target, 0, len(cfg.Targets)),
	}
	if meta.IsDefined("generator", "strict") {
		m.Generator.Strict = cfg.Generator.Strict
	}

	seen := make(map[string]bool, len(cfg.Targets))
	outputs := make(map[string]string, len(cfg.Targets)) // output -> target name
	for i, tc := range cfg.Targets {
		at := func(key string) int { return loc.line("target", i, key) }

		name := strings.TrimSpace(tc.Name)
		if name == "" {
			name = fmt.Sprintf("target-%d", i+1)
		}
		if seen[name] {
			return nil, fail(diag.PrjDuplicateTarget, at("name"), "duplicate target name %q", name)
		}
		seen[name] = true

		if strings.TrimSpace(tc.Command) == "" {
			return nil, bad(at(""), "target %q: missing command", name)
		}
		mode, err := stubs.ParseOutputMode(tc.Command)
		if err != nil {
			return nil, bad(at("command"), "target %q: %v", name, err)
		}
		if strings.TrimSpace(tc.Output) == "" {
			return nil, bad(at(""), "target %q: missing output", name)
		}

		var dispatch stubs.DispatchMode
		switch mode {
		case stubs.OutputASM:
			if dispatch, err = stubs.ParseDispatchMode(tc.Dispatch); err != nil {
				return nil, bad(at("dispatch"), "target %q: %v", name, err)
			}
		case stubs.OutputInit:
			if strings.TrimSpace(tc.Dispatch) != "" {
				return nil, bad(at("dispatch"), "target %q: dispatch is only valid for asm targets", name)
			}
		}

		output := resolve(root, tc.Output)
		if output == m.Generator.Header {
			return nil, fail(diag.PrjOutputConflict, at("output"), "target %q: output would overwrite the header %s", name, tc.Output)
		}
		if other, dup := outputs[output]; dup {
			return nil, fail(diag.PrjOutputConflict, at("output"), "target %q: output %s is also written by target %q", name, tc.Output, other)
		}
		outputs[output] = name

		m.Targets = append(m.Targets, Target{
			Name:     name,
			Output:   output,
			Mode:     mode,
			Dispatch: dispatch,
		})
	}
	if len(m.Targets) == 0 {
		return nil, bad(0, "no [[target]] entries")
	}
	return m, nil
}

// LoadFrom finds the manifest above startDir and loads it. ok is false when
// there is none.
func LoadFrom(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = Load(path)
	return m, true, err
}

func resolve(root, p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
