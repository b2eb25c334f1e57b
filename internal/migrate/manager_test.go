package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"single", "create table t (id int);", 1},
		{"two", "create table a (id int); create table b (id int);", 2},
		{"semicolon in string literal", "insert into t(v) values ('a;b'); insert into t(v) values ('c');", 2},
		{"trailing without semicolon", "create table t (id int)", 1},
		{"blank", "  \n\t ", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitStatements(tc.in)
			if len(got) != tc.want {
				t.Fatalf("splitStatements(%q) = %d statements, want %d: %v", tc.in, len(got), tc.want, got)
			}
		})
	}
}

func TestSplitStatementsKeepsLiteralIntact(t *testing.T) {
	stmts := splitStatements("insert into t(v) values ('x;y;z');")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if !strings.Contains(stmts[0], "'x;y;z'") {
		t.Fatalf("string literal mangled: %q", stmts[0])
	}
}

func TestCollectScriptsOrdersByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_second.up.sql", "0001_first.up.sql", "0001_first.down.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	scripts, err := collectScripts(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collectScripts: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("expected 2 scripts, got %d: %v", len(scripts), scripts)
	}
	if scripts[0].Name != "0001_first.up.sql" || scripts[1].Name != "0002_second.up.sql" {
		t.Fatalf("wrong order: %v", scripts)
	}
}

func TestCollectScriptsMissingDir(t *testing.T) {
	scripts, err := collectScripts(filepath.Join(t.TempDir(), "absent"), ".sql")
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if len(scripts) != 0 {
		t.Fatalf("expected no scripts, got %v", scripts)
	}
	scripts, err = collectScripts("", ".sql")
	if err != nil || len(scripts) != 0 {
		t.Fatalf("empty dir name must yield nothing: %v %v", scripts, err)
	}
}
