package filesource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/parse"
	"github.com/amichne/konditional/internal/registry"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestSource_LoadOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.json")
	writeFile(t, path, `{"flags": [{"key": "new-checkout", "type": "BOOLEAN", "defaultValue": false}]}`)

	decls := parse.NewDeclarations(ids.FeatureDeclaration{FeatureId: "new-checkout", Type: ids.TypeBoolean})
	reg := registry.New()
	src := New(path, decls, parse.Options{}, reg, nil)

	if err := src.LoadOnce(); err != nil {
		t.Fatalf("LoadOnce failed: %v", err)
	}
	if _, ok := reg.Feature("new-checkout"); !ok {
		t.Fatal("expected feature to be published")
	}
}

func TestSource_LoadOnce_DecodeFailureDoesNotPublish(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.json")
	writeFile(t, path, `not json`)

	decls := parse.NewDeclarations()
	reg := registry.New()
	before := reg.Current()
	src := New(path, decls, parse.Options{}, reg, nil)

	if err := src.LoadOnce(); err == nil {
		t.Fatal("expected decode failure")
	}
	if reg.Current() != before {
		t.Fatal("expected registry's current configuration to be untouched after a decode failure")
	}
}

func TestSource_Watch_PicksUpChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flags.json")
	writeFile(t, path, `{"flags": [{"key": "new-checkout", "type": "BOOLEAN", "defaultValue": false}]}`)

	decls := parse.NewDeclarations(ids.FeatureDeclaration{FeatureId: "new-checkout", Type: ids.TypeBoolean})
	reg := registry.New()
	src := New(path, decls, parse.Options{}, reg, nil)

	if err := src.LoadOnce(); err != nil {
		t.Fatalf("LoadOnce failed: %v", err)
	}
	if err := src.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer src.Stop()

	writeFile(t, path, `{"flags": [{"key": "new-checkout", "type": "BOOLEAN", "defaultValue": true}]}`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		def, ok := reg.Feature("new-checkout")
		if ok && def.DefaultValue.Type() == ids.TypeBoolean {
			if b, _ := def.DefaultValue.Bool(); b {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected watcher to pick up the file change within the deadline")
}
