package intercom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth_digest/intercoms" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"description": "Парадна 1"},
			{"description": "Гараж", "section": "B"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "user", "pass")
	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("devices = %d", len(devices))
	}
	if devices[0].Index != 0 || devices[0].Description != "Парадна 1" || devices[0].Section != "" {
		t.Fatalf("unexpected device[0]: %+v", devices[0])
	}
	if devices[1].Index != 1 || devices[1].Section != "B" {
		t.Fatalf("unexpected device[1]: %+v", devices[1])
	}
}

func TestListDevices_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not an array`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "user", "pass")
	if _, err := c.ListDevices(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSnapshot(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth_digest/intercoms/3/big_picture" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "user", "pass")
	got, err := c.Snapshot(context.Background(), 3)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestOpenDoor(t *testing.T) {
	t.Run("2xx is success", func(t *testing.T) {
		var path string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "user", "pass")
		if err := c.OpenDoor(context.Background(), 1); err != nil {
			t.Fatalf("open door: %v", err)
		}
		if path != "/auth_digest/intercoms/1/open_door" {
			t.Fatalf("unexpected path: %s", path)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "user", "pass")
		if err := c.OpenDoor(context.Background(), 99); err == nil {
			t.Fatalf("expected error for 404")
		}
	})
}
