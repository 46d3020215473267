package features

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/wilbur182/docchat/internal/config"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetTestConfigPath(path)
	t.Cleanup(config.ResetTestConfigPath)
	return path
}

func TestIsEnabled_Defaults(t *testing.T) {
	globalManager = nil
	if !IsEnabled(OfficePreview.Name) {
		t.Error("office_preview should default on")
	}
	if IsEnabled(WebSearchDefault.Name) {
		t.Error("web_search_default should default off")
	}
	if IsEnabled("unknown_feature") {
		t.Error("unknown features should default to false")
	}
}

func TestIsEnabled_Precedence(t *testing.T) {
	cfg := config.Default()
	cfg.Features.Flags[OfficePreview.Name] = false
	Init(cfg)
	defer func() { globalManager = nil }()

	if IsEnabled(OfficePreview.Name) {
		t.Fatal("config value should beat the default")
	}
	SetOverride(OfficePreview.Name, true)
	if !IsEnabled(OfficePreview.Name) {
		t.Fatal("CLI override should beat config")
	}
}

func TestReload_KeepsOverrides(t *testing.T) {
	Init(config.Default())
	defer func() { globalManager = nil }()
	SetOverride(WebSearchDefault.Name, true)

	cfg := config.Default()
	cfg.Features.Flags[WebSearchDefault.Name] = false
	cfg.Features.Flags[OfficePreview.Name] = false
	Reload(cfg)

	if !IsEnabled(WebSearchDefault.Name) {
		t.Error("override lost on reload")
	}
	if IsEnabled(OfficePreview.Name) {
		t.Error("reloaded config not applied")
	}
}

func TestListAll(t *testing.T) {
	all := ListAll()
	if len(all) != 2 {
		t.Fatalf("ListAll() = %v", all)
	}
	for _, f := range all {
		if f.Description == "" {
			t.Errorf("%s has no description", f.Name)
		}
	}
	all[0].Name = "modified"
	if ListAll()[0].Name == "modified" {
		t.Error("ListAll should return a copy")
	}
	if len(List()) != 2 {
		t.Error("List should report every known feature")
	}
}

func TestSetEnabled(t *testing.T) {
	globalManager = nil
	if err := SetEnabled(OfficePreview.Name, false); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	setupTestConfig(t)
	Init(config.Default())
	defer func() { globalManager = nil }()

	if err := SetEnabled(OfficePreview.Name, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if IsEnabled(OfficePreview.Name) {
		t.Error("in-memory flag not updated")
	}
	saved, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := saved.Features.Flags[OfficePreview.Name]; !ok || v {
		t.Errorf("saved flags = %v", saved.Features.Flags)
	}
}

func TestConcurrentAccess(t *testing.T) {
	Init(config.Default())
	defer func() { globalManager = nil }()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = IsEnabled(OfficePreview.Name)
		}()
		go func() {
			defer wg.Done()
			SetOverride(WebSearchDefault.Name, true)
		}()
		go func() {
			defer wg.Done()
			Reload(config.Default())
		}()
	}
	wg.Wait()
}
