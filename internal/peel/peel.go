// Package peel implements the indirection peeler (spec.md §4.1): it
// iteratively strips wrappers like sudo, env, xargs, and "bash -c" from a
// command string, producing the residual command and the ordered chain of
// wrappers it saw.
package peel

import (
	"strings"

	"github.com/billf/permissionsync-claude-code/internal/config"
)

// maxIterations bounds peeling so pathological chains can't loop forever.
const maxIterations = 10

// Result is the outcome of peeling a command string.
type Result struct {
	// Residual is the command left after every wrapper has been stripped.
	Residual string
	// Chain is the ordered sequence of wrapper names peeled off, outermost
	// first.
	Chain []string
}

// Peel strips indirection wrappers from command using tables, terminating
// after at most 10 iterations. If command has no indirection at its head,
// Residual equals command and Chain is empty.
func Peel(command string, tables *config.Tables) Result {
	residual := command
	var chain []string

	for i := 0; i < maxIterations; i++ {
		trimmed := strings.TrimLeft(residual, " \t")
		if !strings.ContainsAny(trimmed, " \t") {
			residual = trimmed
			break
		}

		head, rest := splitHead(trimmed)
		kind, ok := tables.Indirection[head]
		if !ok {
			residual = trimmed
			break
		}

		switch kind {
		case config.ShellC:
			inner, matched := peelShellC(rest)
			if !matched {
				// Not actually indirection (no -c form): rewind and stop.
				residual = trimmed
				goto done
			}
			chain = append(chain, head)
			residual = inner
		case config.PrefixKV:
			chain = append(chain, head)
			residual = peelPrefixFlags(rest, tables.FlagsWithArgs[head], true)
		default: // PrefixFlags, Xargs
			chain = append(chain, head)
			residual = peelPrefixFlags(rest, tables.FlagsWithArgs[head], false)
		}
	}

done:
	return Result{Residual: residual, Chain: chain}
}

// splitHead returns the first whitespace-delimited token and the remainder.
func splitHead(s string) (head, rest string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	head = fields[0]
	idx := strings.Index(s, head)
	rest = s[idx+len(head):]
	return head, rest
}

// peelPrefixFlags consumes leading "-"-prefixed tokens (and, if allowKV, any
// token containing "=") until a non-flag token is reached. Flags present in
// argFlags consume the following token as their argument. A literal "--"
// stops flag consumption.
func peelPrefixFlags(rest string, argFlags config.StringSet, allowKV bool) string {
	for {
		trimmed := strings.TrimLeft(rest, " \t")
		if trimmed == "" {
			return trimmed
		}

		head, tail := splitHead(trimmed)

		if head == "--" {
			return strings.TrimLeft(tail, " \t")
		}

		isFlag := strings.HasPrefix(head, "-")
		isKV := allowKV && strings.Contains(head, "=") && !isFlag
		if !isFlag && !isKV {
			return trimmed
		}

		rest = tail

		if isFlag && !strings.Contains(head, "=") && argFlags.Has(head) {
			// Consume the following token as this flag's argument.
			nextTrimmed := strings.TrimLeft(rest, " \t")
			if nextTrimmed != "" {
				_, afterArg := splitHead(nextTrimmed)
				rest = afterArg
			}
		}
	}
}

// peelShellC requires the next token to be exactly "-c", followed by a
// quoted (or bare) command, which becomes the new residual. Returns
// matched=false if the shape isn't "-c ...".
func peelShellC(rest string) (inner string, matched bool) {
	trimmed := strings.TrimLeft(rest, " \t")
	head, tail := splitHead(trimmed)
	if head != "-c" {
		return "", false
	}

	arg := strings.TrimLeft(tail, " \t")
	if arg == "" {
		return "", false
	}

	return unquote(arg), true
}

// unquote strips one layer of matching single or double quotes around the
// entire remaining string, if present. It never parses quotes embedded
// mid-string; that's not part of this component's contract.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first := s[0]
	last := s[len(s)-1]
	if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
