// Package classify implements the rule synthesizer & classifier (spec.md
// §4.2): given a tool invocation it produces a canonical permission rule,
// a base command, the indirection chain that produced it, and whether the
// invocation is intrinsically safe.
package classify

import (
	"path"
	"regexp"
	"strings"

	"github.com/billf/permissionsync-claude-code/internal/config"
	"github.com/billf/permissionsync-claude-code/internal/peel"
)

// Result is what Classify returns for a single tool invocation.
type Result struct {
	// Rule is the canonical permission-rule string.
	Rule string
	// BaseCommand is "<binary> <subcommand>", "<binary>", or empty.
	BaseCommand string
	// Chain is the ordered wrapper names the peeler stripped.
	Chain []string
	// IsSafe is true only when every safety condition in spec.md §4.2 holds.
	IsSafe bool
}

var binaryPattern = regexp.MustCompile(`^[A-Za-z0-9_.~/-]+$`)

// Classify dispatches on toolName and, for Bash, runs the full command
// pipeline. It never fails: malformed input collapses to a bare rule with
// IsSafe=false.
func Classify(toolName string, toolInput map[string]any, tables *config.Tables) Result {
	switch {
	case toolName == "Bash":
		return classifyBash(toolInput, tables)
	case toolName == "Read", toolName == "Write", toolName == "Edit", toolName == "MultiEdit":
		return Result{Rule: toolName}
	case toolName == "WebFetch":
		return classifyWebFetch(toolInput)
	case strings.HasPrefix(toolName, "mcp__"):
		return Result{Rule: toolName}
	default:
		return Result{Rule: toolName}
	}
}

func classifyWebFetch(toolInput map[string]any) Result {
	url, _ := toolInput["url"].(string)
	if url == "" {
		return Result{Rule: "WebFetch"}
	}
	host := hostOf(url)
	if host == "" {
		return Result{Rule: "WebFetch"}
	}
	return Result{Rule: "WebFetch(domain:" + host + ")"}
}

// hostOf extracts the substring between the first "://" and the next "/"
// (or end of string), per spec.md §4.2.
func hostOf(url string) string {
	idx := strings.Index(url, "://")
	if idx < 0 {
		return ""
	}
	rest := url[idx+len("://"):]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return rest[:slash]
	}
	return rest
}

func classifyBash(toolInput map[string]any, tables *config.Tables) Result {
	command, _ := toolInput["command"].(string)
	if command == "" {
		return Result{Rule: "Bash", IsSafe: false}
	}

	multiline := strings.Contains(command, "\n")
	firstLine := command
	if idx := strings.IndexByte(command, '\n'); idx >= 0 {
		firstLine = command[:idx]
	}

	guardsFired := hasChaining(firstLine) ||
		hasSubstitution(firstLine) ||
		hasRedirection(firstLine) ||
		hasBackground(firstLine) ||
		multiline

	p := peel.Peel(firstLine, tables)
	effective := p.Residual

	tokens := strings.Fields(effective)
	var binary string
	if len(tokens) > 0 {
		binary = tokens[0]
	}
	if binary != "" && !isAcceptableBinary(binary, tables) {
		binary = ""
	}

	idx := 1
	if binary != "" {
		if flags, ok := tables.PreSubcommandFlags[binary]; ok {
			for idx < len(tokens) && flags.Has(tokens[idx]) {
				idx++
				if idx < len(tokens) {
					idx++
				}
			}
		}
	}

	var subcommand string
	if binary != "" && idx < len(tokens) {
		subcommand = tokens[idx]
	}

	result := Result{Chain: p.Chain}

	safeSet, tracked := tables.SafeSubcommands[binary]
	switch {
	case tracked && subcommand != "":
		result.Rule = "Bash(" + binary + " " + subcommand + " *)"
		result.BaseCommand = binary + " " + subcommand
		result.IsSafe = !guardsFired && safeSet.Has(subcommand)
	case binary != "":
		result.Rule = "Bash(" + binary + " *)"
		result.BaseCommand = binary
		result.IsSafe = false
	default:
		result.Rule = "Bash"
		result.BaseCommand = ""
		result.IsSafe = false
	}

	return result
}

// isAcceptableBinary rejects tokens that aren't a plausible bare binary
// name, shell keywords, and blocklisted interpreters (matched on bare name
// or, for path-like tokens, on basename).
func isAcceptableBinary(binary string, tables *config.Tables) bool {
	if !binaryPattern.MatchString(binary) {
		return false
	}
	if tables.ShellKeywords.Has(binary) {
		return false
	}
	if tables.Blocklisted.Has(binary) {
		return false
	}
	if strings.Contains(binary, "/") && tables.Blocklisted.Has(path.Base(binary)) {
		return false
	}
	return true
}

// hasChaining reports SEC-01: literal &&, ||, |, or ; anywhere in s.
func hasChaining(s string) bool {
	return strings.Contains(s, "&&") ||
		strings.Contains(s, "||") ||
		strings.Contains(s, "|") ||
		strings.Contains(s, ";")
}

// hasSubstitution reports SEC-01b: backticks or $(, >(, <( command/process
// substitution forms.
func hasSubstitution(s string) bool {
	return strings.Contains(s, "`") ||
		strings.Contains(s, "$(") ||
		strings.Contains(s, ">(") ||
		strings.Contains(s, "<(")
}

// redirectionMultiChar lists the multi-character redirection forms (">>",
// "&>", "<<<", "2>"), each of which independently triggers SEC-03, plus the
// process-substitution forms (">(", "<(") that SEC-01b covers. All of them
// are masked out before testing for a standalone "<" or ">".
var redirectionMultiChar = []string{">>", "&>", "<<<", "2>", ">(", "<("}

// hasRedirection reports SEC-03: any of the named multi-character
// redirection forms, or a standalone ">"/"<" not already part of one of
// them (or of the process-substitution forms SEC-01b already covers).
func hasRedirection(s string) bool {
	for _, form := range redirectionMultiChar {
		if strings.Contains(s, form) && form != ">(" && form != "<(" {
			return true
		}
	}
	return hasStandaloneAngle(s)
}

// hasStandaloneAngle masks every known multi-character form with
// same-length placeholders, preserving the rest of the string's layout,
// then reports whether a bare "<" or ">" survives.
func hasStandaloneAngle(s string) bool {
	masked := s
	for _, form := range redirectionMultiChar {
		masked = strings.ReplaceAll(masked, form, strings.Repeat("#", len(form)))
	}
	return strings.ContainsAny(masked, "<>")
}

// hasBackground reports SEC-04: after removing every "&&" occurrence, a
// bare "&" remains (background execution).
func hasBackground(s string) bool {
	return strings.Contains(strings.ReplaceAll(s, "&&", ""), "&")
}
