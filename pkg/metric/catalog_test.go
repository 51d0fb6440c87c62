package metric

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogBuiltin(t *testing.T) {
	c := builtinCatalog(t)

	if c.Count() == 0 {
		t.Fatal("builtin catalog is empty")
	}
	if c.Threshold() != DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", c.Threshold(), DefaultThreshold)
	}
}

func TestCatalogLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	os.WriteFile(path, []byte(`threshold: 0.7
metrics:
  - name: Net Sales
    aliases: [net sales, revenue]
  - name: Gross Profit
    aliases: [gross profit]
`), 0o644)

	c := NewCatalog(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Count() != 2 {
		t.Errorf("Count = %d, want 2", c.Count())
	}
	if c.Threshold() != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", c.Threshold())
	}
	if got := c.Match("revenue"); got.Canonical != "Net Sales" {
		t.Errorf("Match(revenue) = %q, want Net Sales", got.Canonical)
	}
}

func TestCatalogReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	os.WriteFile(path, []byte("metrics:\n  - name: Net Sales\n    aliases: [revenue]\n"), 0o644)

	c := NewCatalog(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Count() != 1 {
		t.Fatalf("Count = %d, want 1", c.Count())
	}

	os.WriteFile(path, []byte(`metrics:
  - name: Net Sales
    aliases: [revenue]
  - name: Net Profit
    aliases: [net income]
`), 0o644)
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.Count() != 2 {
		t.Errorf("Count after reload = %d, want 2", c.Count())
	}
}

func TestCatalogLoadErrors(t *testing.T) {
	dir := t.TempDir()

	c := NewCatalog(filepath.Join(dir, "missing.yaml"))
	if err := c.Load(); err == nil {
		t.Error("Load missing file: want error")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("metrics: [ {aliases: [x]} ]"), 0o644)
	c = NewCatalog(bad)
	if err := c.Load(); err == nil {
		t.Error("Load metric without name: want error")
	}

	garbage := filepath.Join(dir, "garbage.yaml")
	os.WriteFile(garbage, []byte("\tnot yaml"), 0o644)
	c = NewCatalog(garbage)
	if err := c.Load(); err == nil {
		t.Error("Load unparseable file: want error")
	}
}
