package session

import (
	"os"
	"testing"
	"time"

	"github.com/gloriapark/concierge/flow"
	"github.com/gloriapark/concierge/intercom"
)

func TestSaveLoad_Snapshot(t *testing.T) {
	dir := t.TempDir()
	key := "telegram:42"

	r := New(key)
	r.Context = flow.Context{
		State: flow.StateMenu,
		Phone: "380501112233",
		Devices: []intercom.Device{
			{Index: 0, Description: "Парадна 1"},
			{Index: 3, Description: "Гараж", Section: "B"},
		},
		FetchedAt: time.Now().Truncate(time.Second),
	}
	if err := Save(dir, r); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(dir, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatalf("loaded record is nil")
	}
	if loaded.Context.State != flow.StateMenu || loaded.Context.Phone != "380501112233" {
		t.Fatalf("unexpected context: %+v", loaded.Context)
	}
	if len(loaded.Context.Devices) != 2 {
		t.Fatalf("devices = %d", len(loaded.Context.Devices))
	}
	// The fetched-list index must survive the snapshot; it is the vendor
	// addressing key.
	if loaded.Context.Devices[1].Index != 3 {
		t.Fatalf("index lost: %+v", loaded.Context.Devices[1])
	}
	if !loaded.Context.FetchedAt.Equal(r.Context.FetchedAt) {
		t.Fatalf("fetched_at lost")
	}
}

func TestLoad_Missing(t *testing.T) {
	r, err := Load(t.TempDir(), "telegram:404")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil for missing snapshot")
	}
}

func TestManager_GetOrCreateDefaultsToAwaitingPhone(t *testing.T) {
	m := NewManager(t.TempDir())
	r, err := m.GetOrCreate("telegram:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Context.State != flow.StateAwaitingPhone {
		t.Fatalf("state = %q", r.Context.State)
	}
}

func TestManager_Clear(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	r, err := m.GetOrCreate("telegram:7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	r.Context.State = flow.StateMenu
	r.Context.Phone = "380501112233"
	if err := m.Save(r); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := m.Clear("telegram:7"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(storePath(dir, "telegram:7")); !os.IsNotExist(err) {
		t.Fatalf("snapshot file should be gone, stat err=%v", err)
	}

	fresh, err := m.GetOrCreate("telegram:7")
	if err != nil {
		t.Fatalf("get after clear: %v", err)
	}
	if fresh.Context.State != flow.StateAwaitingPhone || fresh.Context.Phone != "" {
		t.Fatalf("expected fresh session, got %+v", fresh.Context)
	}

	// Clearing an already-clean session is not an error.
	if err := m.Clear("telegram:7"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
