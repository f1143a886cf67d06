package peel

import (
	"reflect"
	"testing"

	"github.com/billf/permissionsync-claude-code/internal/config"
)

func TestPeelNoIndirection(t *testing.T) {
	tables := config.Default()
	r := Peel("git status", tables)
	if r.Residual != "git status" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git status")
	}
	if len(r.Chain) != 0 {
		t.Errorf("Chain = %v, want empty", r.Chain)
	}
}

func TestPeelSingleToken(t *testing.T) {
	tables := config.Default()
	r := Peel("ls", tables)
	if r.Residual != "ls" || len(r.Chain) != 0 {
		t.Errorf("got %+v, want residual=ls chain=[]", r)
	}
}

func TestPeelSudoWithFlag(t *testing.T) {
	tables := config.Default()
	r := Peel("sudo -u root git push origin main", tables)
	if r.Residual != "git push origin main" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git push origin main")
	}
	if !reflect.DeepEqual(r.Chain, []string{"sudo"}) {
		t.Errorf("Chain = %v, want [sudo]", r.Chain)
	}
}

func TestPeelEnvKV(t *testing.T) {
	tables := config.Default()
	r := Peel("env A=1 B=2 git status", tables)
	if r.Residual != "git status" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git status")
	}
	if !reflect.DeepEqual(r.Chain, []string{"env"}) {
		t.Errorf("Chain = %v, want [env]", r.Chain)
	}
}

func TestPeelSudoEnvChain(t *testing.T) {
	tables := config.Default()
	r := Peel("sudo env FOO=bar git push", tables)
	if r.Residual != "git push" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git push")
	}
	if !reflect.DeepEqual(r.Chain, []string{"sudo", "env"}) {
		t.Errorf("Chain = %v, want [sudo env]", r.Chain)
	}
}

func TestPeelBashDashC(t *testing.T) {
	tables := config.Default()
	r := Peel("bash -c 'git diff'", tables)
	if r.Residual != "git diff" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git diff")
	}
	if !reflect.DeepEqual(r.Chain, []string{"bash"}) {
		t.Errorf("Chain = %v, want [bash]", r.Chain)
	}
}

func TestPeelBashDashCDoubleQuote(t *testing.T) {
	tables := config.Default()
	r := Peel(`bash -c "git diff"`, tables)
	if r.Residual != "git diff" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git diff")
	}
}

func TestPeelBashScriptIsNotIndirection(t *testing.T) {
	tables := config.Default()
	r := Peel("bash script.sh", tables)
	if r.Residual != "bash script.sh" {
		t.Errorf("Residual = %q, want unchanged %q", r.Residual, "bash script.sh")
	}
	if len(r.Chain) != 0 {
		t.Errorf("Chain = %v, want empty (bash script.sh is not indirection)", r.Chain)
	}
}

func TestPeelXargs(t *testing.T) {
	tables := config.Default()
	r := Peel("xargs -I {} -L 1 rm {}", tables)
	if r.Residual != "rm {}" {
		t.Errorf("Residual = %q, want %q", r.Residual, "rm {}")
	}
	if !reflect.DeepEqual(r.Chain, []string{"xargs"}) {
		t.Errorf("Chain = %v, want [xargs]", r.Chain)
	}
}

func TestPeelTerminatesWithinCap(t *testing.T) {
	tables := config.Default()
	// A long but legitimate wrapper chain must still terminate.
	cmd := "sudo nice nohup time command git status"
	r := Peel(cmd, tables)
	if r.Residual != "git status" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git status")
	}
	if len(r.Chain) != 5 {
		t.Errorf("Chain = %v, want 5 wrappers", r.Chain)
	}
}

func TestPeelDoubleDashStopsFlagConsumption(t *testing.T) {
	tables := config.Default()
	r := Peel("sudo -- git status", tables)
	if r.Residual != "git status" {
		t.Errorf("Residual = %q, want %q", r.Residual, "git status")
	}
}
