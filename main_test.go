package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/smplc/errors"
	"github.com/ztrue/tracerr"
)

const helloSource = `mod hello;
fn answer() -> int { return 42; }
fn main() { let x: int = answer(); }
`

// inTempDir runs the test from a fresh working directory.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
	return dir
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"smplc"}, args...))
	return out.String(), tracerr.Unwrap(err)
}

func TestInit(t *testing.T) {
	inTempDir(t)

	if _, err := run("init", "demo"); err != nil {
		t.Fatal(err)
	}
	m, err := readManifest(manifestFile)
	if err != nil {
		t.Fatal(err)
	}
	want := manifest{Package: "demo", Inputs: []string{"main.smpl"}}
	if repr.String(m) != repr.String(want) {
		t.Errorf("got %s, want %s", repr.String(m), repr.String(want))
	}

	if _, err := run("init", "again"); err == nil {
		t.Error("init overwrote an existing manifest")
	}
	if _, err := run("init"); err == nil {
		t.Error("init without a name succeeded")
	}
}

func TestManifestStrict(t *testing.T) {
	inTempDir(t)
	writeFile(t, manifestFile, "package: demo\nbackends: 1\n")
	if _, err := readManifest(manifestFile); err == nil {
		t.Error("unknown manifest keys were accepted")
	}
}

func TestBuildFromManifest(t *testing.T) {
	inTempDir(t)
	writeFile(t, "hello.smpl", helloSource)
	writeFile(t, manifestFile, "package: hello\ninputs: [hello.smpl]\nbackend: 2\nlog-level: ERROR\n")

	out, err := run("build")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "package main") || !strings.Contains(out, "func hello_answer() int64 {") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// flags win over the manifest
	out, err = run("build", "--backend", "0")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pub mod hello {") {
		t.Errorf("--backend did not override the manifest:\n%s", out)
	}
}

func TestBuildOutput(t *testing.T) {
	dir := inTempDir(t)
	writeFile(t, "hello.smpl", helloSource)

	path := filepath.Join(dir, "hello.ll")
	out, err := run("build", "-i", "hello.smpl", "-b", "1", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("build with --output wrote to stdout: %q", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "define i64 @hello_answer()") {
		t.Errorf("unexpected IR:\n%s", data)
	}
}

func TestDumpAST(t *testing.T) {
	inTempDir(t)
	writeFile(t, "hello.smpl", helloSource)

	out, err := run("build", "--input", "hello.smpl", "--dump-ast")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ast.Module") || !strings.Contains(out, `"answer"`) {
		t.Errorf("unexpected dump:\n%s", out)
	}
}

func TestBuildErrors(t *testing.T) {
	inTempDir(t)
	writeFile(t, "bad.smpl", `fn main() { let x: int = "no"; }`)
	writeFile(t, "hello.smpl", helloSource)

	_, err := run("build", "--input", "bad.smpl")
	if _, ok := err.(errors.TypeMismatchError); !ok {
		t.Errorf("expected TypeMismatchError, got %T: %v", err, err)
	}

	_, err = run("build", "--input", "hello.smpl", "--backend", "9")
	if _, ok := err.(errors.UnknownBackendError); !ok {
		t.Errorf("expected UnknownBackendError, got %T: %v", err, err)
	}

	if _, err = run("build"); err == nil {
		t.Error("build without inputs or manifest succeeded")
	}
	if _, err = run("build", "--input", "missing.smpl"); err == nil {
		t.Error("build of a missing file succeeded")
	}
	if _, err = run("--log-level", "LOUD", "backends"); err == nil {
		t.Error("an invalid log level was accepted")
	}
}

func TestCheck(t *testing.T) {
	inTempDir(t)
	writeFile(t, "hello.smpl", helloSource)

	if _, err := run("check", "--input", "hello.smpl"); err != nil {
		t.Error(err)
	}
}

func TestBackends(t *testing.T) {
	out, err := run("backends")
	if err != nil {
		t.Fatal(err)
	}
	if want := "0\trust\n1\tllvm\n2\tgolang\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, tracerr.Wrap(errors.UnknownBackendError{ID: 4, Available: []int{0}}))
	if !strings.Contains(buf.String(), "error:") || !strings.Contains(buf.String(), "unknown backend 4") {
		t.Errorf("unexpected report %q", buf.String())
	}
}
