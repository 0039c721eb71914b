package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/auth"
	"github.com/GSKISBOT/fileconvertor/pkg/config"
)

// execute runs the root command with fresh flag state and an isolated home
func execute(t *testing.T, args ...string) error {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FILECONVERTOR_USERS_FILE", filepath.Join(home, "users.json"))
	t.Setenv("FILECONVERTOR_LOG_LEVEL", "error")

	outputPath, configPath, targetLanguage, logLevel = "", "", "", ""
	verbose, forceInit = false, false

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestConvertCommandWritesDocx(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(input, []byte("Hello\nWorld\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "convert", input); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "hello_converted.docx"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("output is not a zip package")
	}
}

func TestConvertCommandRejectsUnsupported(t *testing.T) {
	input := filepath.Join(t.TempDir(), "archive.xyz")
	if err := os.WriteFile(input, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "convert", input); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestUsersCommands(t *testing.T) {
	if err := execute(t, "users", "add", "12x"); err == nil {
		t.Error("expected non-numeric id to be rejected")
	}

	home := t.TempDir()
	usersFile := filepath.Join(home, "users.json")
	run := func(args ...string) {
		t.Helper()
		outputPath, configPath, logLevel = "", "", ""
		t.Setenv("HOME", home)
		t.Setenv("FILECONVERTOR_USERS_FILE", usersFile)
		rootCmd.SetArgs(args)
		if err := rootCmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	run("users", "add", "111", "222", "111")
	run("users", "remove", "111")

	users, err := auth.NewJSONFileRepository(usersFile).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0] != "222" {
		t.Errorf("users = %v", users)
	}
}

func TestConfigSetWritesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := execute(t, "--config", path, "config", "set", "translation.workers", "5"); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Translation.Workers != 5 {
		t.Errorf("workers = %d", cfg.Translation.Workers)
	}

	if err := execute(t, "--config", path, "config", "set", "translation.workers", "many"); err == nil {
		t.Error("expected integer validation error")
	}
}

func TestFormatsCommandListsExtensions(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	if err := execute(t, "formats"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{".bmp .gif .jpeg .jpg .png .tif .tiff", ".htm .html", "docx"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "OCR engine") {
		t.Errorf("output should report OCR engines:\n%s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"abc":            "****",
		"123456:ABCDEFG": "****DEFG",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
