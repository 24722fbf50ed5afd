package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dbfs "github.com/plastmart/b2b/db"
	"github.com/plastmart/b2b/internal/db"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	if err := os.WriteFile(src, []byte("backup bytes"), 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}

	dst := filepath.Join(dir, "dst.db")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "backup bytes" {
		t.Fatalf("copied content: %q err=%v", got, err)
	}

	if err := copyFile(src, filepath.Join(dir, "missing", "dst.db")); err == nil {
		t.Fatalf("expected error for unwritable destination")
	}
	if err := copyFile(filepath.Join(dir, "nope.db"), dst); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestCheckIntegrity(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	good := filepath.Join(dir, "good.db")
	d, err := db.New(ctx, good, nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	d.Close()
	if err := checkIntegrity(good); err != nil {
		t.Fatalf("integrity of migrated db: %v", err)
	}

	junk := filepath.Join(dir, "junk.db")
	if err := os.WriteFile(junk, []byte("definitely not sqlite, padded to look like a header block"), 0o600); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	if err := checkIntegrity(junk); err == nil {
		t.Fatalf("expected integrity failure for junk file")
	}

	if err := checkIntegrity(filepath.Join(dir, "absent.db")); err == nil {
		t.Fatalf("expected error for absent backup")
	}
}
