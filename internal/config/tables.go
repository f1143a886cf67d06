// Package config holds the static, process-wide lookup tables the rest of
// the permission-guard pipeline is built on: which subcommands are safe for
// a tracked binary, which words are indirection wrappers, which flags
// consume a following argument, and which binaries/keywords are never
// trusted no matter what follows them.
//
// Tables are immutable once built. Extend (see overlay.go) layers an
// optional YAML overlay on top without touching any other component.
package config

// IndirectionKind tags how an indirection wrapper's flags are consumed by
// the peeler (spec.md §4.1).
type IndirectionKind int

const (
	// PrefixFlags wrappers (sudo, nice, nohup, time, command) consume
	// leading "-"-prefixed flags, some of which take a following argument.
	PrefixFlags IndirectionKind = iota
	// PrefixKV wrappers (env) additionally consume KEY=VAL tokens.
	PrefixKV
	// ShellC wrappers (bash, sh, zsh, dash) require a "-c '<command>'" form.
	ShellC
	// Xargs consumes its own argument-flag table before the wrapped command.
	Xargs
)

func (k IndirectionKind) String() string {
	switch k {
	case PrefixFlags:
		return "PrefixFlags"
	case PrefixKV:
		return "PrefixKV"
	case ShellC:
		return "ShellC"
	case Xargs:
		return "Xargs"
	default:
		return "Unknown"
	}
}

// StringSet is a small immutable-by-convention set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a StringSet from a list of words.
func NewStringSet(words ...string) StringSet {
	s := make(StringSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether word is a member of the set.
func (s StringSet) Has(word string) bool {
	_, ok := s[word]
	return ok
}

// Add inserts word into the set, mutating it in place.
func (s StringSet) Add(word string) {
	s[word] = struct{}{}
}

// Tables is the full set of config-table lookups the classifier and peeler
// consult. A zero Tables is unusable; use Default() or Load().
type Tables struct {
	// SafeSubcommands maps a tracked binary to its curated safe subcommand set.
	SafeSubcommands map[string]StringSet
	// Indirection maps a wrapper word to its peeling strategy.
	Indirection map[string]IndirectionKind
	// FlagsWithArgs maps a wrapper word to the flags that consume a
	// following token as their argument.
	FlagsWithArgs map[string]StringSet
	// ShellKeywords never start a binary; they're shell grammar.
	ShellKeywords StringSet
	// Blocklisted binaries can never be classified safe, matched by bare
	// name or by the basename of a path-like token (one containing "/").
	Blocklisted StringSet
	// PreSubcommandFlags maps a tracked binary to flags (with arguments)
	// that may appear between the binary and its subcommand.
	PreSubcommandFlags map[string]StringSet
	// AltRulePrefixes maps a tracked binary to flag-prefix sequences that
	// imply an alternate rule form during refinement.
	AltRulePrefixes map[string][]string
}

// Default returns the canonical, minimal, tightened table set from spec.md §3.
func Default() *Tables {
	return &Tables{
		SafeSubcommands: map[string]StringSet{
			"git": NewStringSet(
				"status", "log", "diff", "show", "branch", "tag", "describe",
				"rev-parse", "remote", "ls-files", "ls-tree", "cat-file",
				"shortlog", "reflog", "blame", "version", "help",
			),
			"cargo": NewStringSet(
				"check", "clippy", "fmt", "metadata", "tree", "read-manifest",
				"pkgid", "verify-project", "version",
			),
			"npm": NewStringSet(
				"ls", "list", "outdated", "view", "info", "pack", "config",
				"prefix", "root",
			),
			"nix": NewStringSet(
				"log", "show-derivation", "path-info", "store",
			),
			"docker": NewStringSet(
				"ps", "images", "inspect", "logs", "stats", "top", "version",
				"info", "events", "history", "port",
			),
			"kubectl": NewStringSet(
				"get", "describe", "logs", "top", "version", "cluster-info",
				"api-resources", "api-versions", "explain",
			),
			"pip": NewStringSet(
				"list", "show", "freeze", "check",
			),
			"brew": NewStringSet(
				"list", "info", "search", "outdated", "deps", "leaves", "config",
			),
		},
		Indirection: map[string]IndirectionKind{
			"sudo":    PrefixFlags,
			"nice":    PrefixFlags,
			"nohup":   PrefixFlags,
			"time":    PrefixFlags,
			"command": PrefixFlags,
			"env":     PrefixKV,
			"xargs":   Xargs,
			"bash":    ShellC,
			"sh":      ShellC,
			"zsh":     ShellC,
			"dash":    ShellC,
		},
		FlagsWithArgs: map[string]StringSet{
			"sudo":    NewStringSet("-u", "-g", "-h", "-p", "-U"),
			"nice":    NewStringSet("-n"),
			"nohup":   NewStringSet(),
			"time":    NewStringSet("-f", "-o"),
			"command": NewStringSet(),
			"env":     NewStringSet("-C", "-u", "-S", "-i"),
			"xargs":   NewStringSet("-I", "-L", "-n", "-P", "-d", "-s", "-E"),
		},
		ShellKeywords: NewStringSet(
			"for", "if", "then", "else", "elif", "fi", "while", "until", "do",
			"done", "case", "esac", "select", "in", "function", "time",
			"coproc", "{", "}", "!", "[[", "]]",
		),
		Blocklisted: NewStringSet(
			"bash", "sh", "zsh", "dash", "ksh", "csh", "tcsh", "fish",
			"python", "python2", "python3", "ruby", "perl", "node",
			"eval", "exec", "source",
		),
		PreSubcommandFlags: map[string]StringSet{
			"git": NewStringSet("-C", "--git-dir", "-c", "--work-tree"),
		},
		AltRulePrefixes: map[string][]string{
			"git": {"-C *"},
		},
	}
}
