package main

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"cubedfm/dashfm"
)

func completions(c *Completer, line string) []string {
	candidates, _ := c.Do([]rune(line), len([]rune(line)))
	result := make([]string, len(candidates))
	for i, r := range candidates {
		result[i] = string(r)
	}
	sort.Strings(result)
	return result
}

func TestCompleter_Commands(t *testing.T) {
	shell, _ := newTestShell(true)
	c := NewCompleter(shell)

	tests := []struct {
		line string
		want []string
	}{
		{"se", []string{"lect", "nd", "rvers", "ssion"}},
		{"ed", []string{"it"}},
		{"zz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := completions(c, tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Do(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestCompleter_Servers(t *testing.T) {
	shell, _ := newTestShell(true)
	shell.servers = []dashfm.Server{
		{Name: "Lobby", ID: 12},
		{Name: "Two Words", ID: 13},
	}
	c := NewCompleter(shell)

	if got, want := completions(c, "select 1"), []string{"2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("select 1 = %v, want %v", got, want)
	}
	if got, want := completions(c, "select Lo"), []string{"bby"}; !reflect.DeepEqual(got, want) {
		t.Errorf("select Lo = %v, want %v", got, want)
	}
}

func TestCompleter_LocalPath(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "hello.sk"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "help.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "helpers"), 0755)

	shell, _ := newTestShell(true)
	c := NewCompleter(shell)

	got := completions(c, "put "+dir+"/hel")
	want := []string{"lo.sk", "p.txt", "pers/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("put completions = %v, want %v", got, want)
	}

	t.Run("hidden files need a dot", func(t *testing.T) {
		for _, name := range completions(c, "put "+dir+"/") {
			if name == ".hidden" {
				t.Error("hidden file offered without a leading dot")
			}
		}
		if got := completions(c, "put "+dir+"/."); !reflect.DeepEqual(got, []string{"hidden"}) {
			t.Errorf("dot completions = %v", got)
		}
	})

	t.Run("second argument is remote", func(t *testing.T) {
		if got := completions(c, "put "+dir+"/hello.sk he"); len(got) != 0 {
			t.Errorf("completions = %v", got)
		}
	})
}
