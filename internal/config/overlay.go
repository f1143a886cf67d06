package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvOverlayPath is the environment variable naming an optional YAML file
// that extends the built-in tables without touching any other component.
const EnvOverlayPath = "CLAUDE_PERMISSION_CONFIG"

// Overlay is the on-disk shape of an extension file. Every field is
// additive: an overlay can only grow a table, never remove or replace an
// entry the built-in Default() already carries.
type Overlay struct {
	SafeSubcommands    map[string][]string `yaml:"safe_subcommands"`
	Indirection        map[string]string   `yaml:"indirection"`
	FlagsWithArgs      map[string][]string `yaml:"flags_with_args"`
	ShellKeywords      []string            `yaml:"shell_keywords"`
	BlocklistedBinaries []string           `yaml:"blocklisted_binaries"`
	PreSubcommandFlags map[string][]string `yaml:"pre_subcommand_flags"`
	AltRulePrefixes    map[string][]string `yaml:"alt_rule_prefixes"`
}

var indirectionKindNames = map[string]IndirectionKind{
	"PrefixFlags": PrefixFlags,
	"PrefixKV":    PrefixKV,
	"ShellC":      ShellC,
	"Xargs":       Xargs,
}

// ParseOverlay decodes a YAML overlay document.
func ParseOverlay(data []byte) (*Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse config overlay: %w", err)
	}
	return &o, nil
}

// Extend merges an overlay into t in place. Unknown indirection kind names
// are rejected; everything else is additive and cannot fail.
func (t *Tables) Extend(o *Overlay) error {
	if o == nil {
		return nil
	}

	for binary, subs := range o.SafeSubcommands {
		set, ok := t.SafeSubcommands[binary]
		if !ok {
			set = NewStringSet()
			t.SafeSubcommands[binary] = set
		}
		for _, s := range subs {
			set.Add(s)
		}
	}

	for word, kindName := range o.Indirection {
		kind, ok := indirectionKindNames[kindName]
		if !ok {
			return fmt.Errorf("config overlay: unknown indirection kind %q for %q", kindName, word)
		}
		if _, exists := t.Indirection[word]; exists {
			continue
		}
		t.Indirection[word] = kind
	}

	for wrapper, flags := range o.FlagsWithArgs {
		set, ok := t.FlagsWithArgs[wrapper]
		if !ok {
			set = NewStringSet()
			t.FlagsWithArgs[wrapper] = set
		}
		for _, f := range flags {
			set.Add(f)
		}
	}

	for _, kw := range o.ShellKeywords {
		t.ShellKeywords.Add(kw)
	}

	for _, b := range o.BlocklistedBinaries {
		t.Blocklisted.Add(b)
	}

	for binary, flags := range o.PreSubcommandFlags {
		set, ok := t.PreSubcommandFlags[binary]
		if !ok {
			set = NewStringSet()
			t.PreSubcommandFlags[binary] = set
		}
		for _, f := range flags {
			set.Add(f)
		}
	}

	for binary, prefixes := range o.AltRulePrefixes {
		t.AltRulePrefixes[binary] = append(t.AltRulePrefixes[binary], prefixes...)
	}

	return nil
}

// Load builds the default tables and, if CLAUDE_PERMISSION_CONFIG names a
// readable file, extends them with its contents. A missing env var or
// missing file is not an error — it just means no overlay is applied.
func Load() (*Tables, error) {
	t := Default()

	path := os.Getenv(EnvOverlayPath)
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read config overlay %s: %w", path, err)
	}

	overlay, err := ParseOverlay(data)
	if err != nil {
		return nil, err
	}

	if err := t.Extend(overlay); err != nil {
		return nil, err
	}

	return t, nil
}
