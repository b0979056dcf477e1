package procrun

import (
	"os"
	"slices"
	"testing"
)

func TestMergeLaterLayersWin(t *testing.T) {
	base := map[string]string{"A": "base", "B": "base"}
	got := Merge(base, map[string]string{"B": "one", "C": "one"}, nil, map[string]string{"C": "two"})
	want := map[string]string{"A": "base", "B": "one", "C": "two"}
	if len(got) != len(want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Merge[%s] = %q, want %q", k, got[k], v)
		}
	}
	if base["B"] != "base" {
		t.Fatalf("Merge modified its base map")
	}
}

func TestExpandDollarOnly(t *testing.T) {
	if got := Expand("cost is $5 and $", map[string]string{"5": "five"}); got != "cost is five and $" {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestExpandReferencesCwdOnlyExplicitly(t *testing.T) {
	env := map[string]string{CwdKey: "/srv/app"}
	if got := Expand("ls cwd", env); got != "ls cwd" {
		t.Fatalf("bare cwd must not be substituted: %q", got)
	}
	if got := Expand("ls $cwd", env); got != "ls /srv/app" {
		t.Fatalf("$cwd should be substituted: %q", got)
	}
}

func TestEnvironAppendsOverlayLast(t *testing.T) {
	t.Setenv("PROCRUN_TEST_ENVIRON", "host")
	list := environ(map[string]string{"PROCRUN_TEST_ENVIRON": "overlay", "B": "2", "A": "1"})
	n := len(list)
	want := []string{"A=1", "B=2", "PROCRUN_TEST_ENVIRON=overlay"}
	if !slices.Equal(list[n-3:], want) {
		t.Fatalf("overlay tail = %v, want %v", list[n-3:], want)
	}
	if os.Getenv("PROCRUN_TEST_ENVIRON") != "host" {
		t.Fatalf("environ modified the host environment")
	}
}

func TestSetenvInstallsEveryKey(t *testing.T) {
	t.Setenv("PROCRUN_TEST_SETENV_A", "")
	t.Setenv("PROCRUN_TEST_SETENV_B", "")
	if err := setenv(map[string]string{"PROCRUN_TEST_SETENV_A": "a", "PROCRUN_TEST_SETENV_B": "b"}); err != nil {
		t.Fatalf("setenv returned error: %v", err)
	}
	if os.Getenv("PROCRUN_TEST_SETENV_A") != "a" || os.Getenv("PROCRUN_TEST_SETENV_B") != "b" {
		t.Fatalf("setenv did not install overlay")
	}
}
