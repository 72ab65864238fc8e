package logfinder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeChatLog(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("log"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindLatestLogFile(t *testing.T) {
	dir := t.TempDir()

	// Rotated siblings are older than the live log.
	files := []string{
		"wakfu_chat.log.2",
		"wakfu_chat.log.1",
		"wakfu_chat.log",
	}
	for i, name := range files {
		path := writeChatLog(t, dir, name)
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindLatestLogFile(dir)
	if err != nil {
		t.Fatalf("FindLatestLogFile() error = %v", err)
	}
	if filepath.Base(got) != "wakfu_chat.log" {
		t.Errorf("FindLatestLogFile() = %v, want wakfu_chat.log", filepath.Base(got))
	}
}

func TestFindLatestLogFile_NoFiles(t *testing.T) {
	_, err := FindLatestLogFile(t.TempDir())
	if !errors.Is(err, ErrNoLogFiles) {
		t.Errorf("FindLatestLogFile() error = %v, want %v", err, ErrNoLogFiles)
	}
}

func TestFindLatestLogFile_IgnoresNonLogFiles(t *testing.T) {
	dir := t.TempDir()
	writeChatLog(t, dir, "wakfu.log")
	writeChatLog(t, dir, "notes.txt")

	_, err := FindLatestLogFile(dir)
	if !errors.Is(err, ErrNoLogFiles) {
		t.Errorf("FindLatestLogFile() error = %v, want %v", err, ErrNoLogFiles)
	}
}

func TestFindLogDir_EnvVar(t *testing.T) {
	dir := t.TempDir()
	writeChatLog(t, dir, "wakfu_chat.log")
	t.Setenv(EnvLogDir, dir)

	got, err := FindLogDir("")
	if err != nil {
		t.Fatalf("FindLogDir() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("FindLogDir() = %v, want %v", got, want)
	}
}

func TestFindLogDir_Explicit(t *testing.T) {
	dir := t.TempDir()
	writeChatLog(t, dir, "wakfu_chat.log")

	// Explicit takes priority over the environment.
	t.Setenv(EnvLogDir, "/some/other/path")

	got, err := FindLogDir(dir)
	if err != nil {
		t.Fatalf("FindLogDir() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if got != want {
		t.Errorf("FindLogDir() = %v, want %v", got, want)
	}
}

func TestFindLogDir_ExplicitInvalid(t *testing.T) {
	_, err := FindLogDir("/nonexistent/path")
	if !errors.Is(err, ErrLogDirNotFound) {
		t.Errorf("FindLogDir() error = %v, want %v", err, ErrLogDirNotFound)
	}
}

func TestFindLogDir_EnvVarInvalid(t *testing.T) {
	t.Setenv(EnvLogDir, "/nonexistent/path")

	_, err := FindLogDir("")
	if !errors.Is(err, ErrLogDirNotFound) {
		t.Errorf("FindLogDir() error = %v, want %v", err, ErrLogDirNotFound)
	}
}

func TestResolveAndValidateLogDir(t *testing.T) {
	dir := t.TempDir()
	writeChatLog(t, dir, "wakfu_chat.log")

	if resolveAndValidateLogDir(dir) == "" {
		t.Error("resolveAndValidateLogDir() = \"\", want valid path")
	}
}

func TestResolveAndValidateLogDir_Empty(t *testing.T) {
	if resolveAndValidateLogDir(t.TempDir()) != "" {
		t.Error("resolveAndValidateLogDir() accepted a directory without chat logs")
	}
}

func TestResolveAndValidateLogDir_NotExists(t *testing.T) {
	if resolveAndValidateLogDir("/nonexistent/path") != "" {
		t.Error("resolveAndValidateLogDir() accepted a nonexistent path")
	}
}
