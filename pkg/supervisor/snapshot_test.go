package supervisor

import (
	"testing"
	"time"
)

func TestDumpLoadSnapshotRoundTrip(t *testing.T) {
	dbPath := t.TempDir() + "/dump"

	sv := newTestSupervisor(t,
		&Watch{
			Name:         "web",
			Start:        []string{"/usr/bin/serve", "--port", "8080"},
			Dir:          "/srv/web",
			Env:          []string{"FOO=bar"},
			StopSignal:   "TERM",
			StartTimeout: 5 * time.Second,
			OutLog:       "/var/log/web.out",
			ErrLog:       "/var/log/web.err",
		},
		&Watch{
			Name:   "worker",
			Start:  []string{"/usr/bin/worker"},
			Uid:    1000,
			UidSet: true,
			Gid:    1000,
			GidSet: true,
			User:   "nobody",
		},
	)

	if err := sv.Dump(dbPath); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	loaded, err := LoadSnapshot(dbPath)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 watches, got %d", len(loaded))
	}

	byName := make(map[string]*Watch, len(loaded))
	for _, w := range loaded {
		byName[w.Name] = w
	}

	web, ok := byName["web"]
	if !ok {
		t.Fatal("expected a loaded watch named web")
	}
	if web.Dir != "/srv/web" || web.StopSignal != "TERM" || web.StartTimeout != 5*time.Second {
		t.Fatalf("web watch did not round-trip correctly: %+v", web)
	}
	if len(web.Start) != 3 || web.Start[0] != "/usr/bin/serve" {
		t.Fatalf("web watch start command did not round-trip: %+v", web.Start)
	}
	if web.OutLog != "/var/log/web.out" || web.ErrLog != "/var/log/web.err" {
		t.Fatalf("web watch log paths did not round-trip: %+v", web)
	}

	worker, ok := byName["worker"]
	if !ok {
		t.Fatal("expected a loaded watch named worker")
	}
	if !worker.UidSet || !worker.GidSet || worker.Uid != 1000 || worker.Gid != 1000 || worker.User != "nobody" {
		t.Fatalf("worker watch credentials did not round-trip: %+v", worker)
	}
}

func TestLoadSnapshotEmptyDatabase(t *testing.T) {
	dbPath := t.TempDir() + "/empty"

	sv := newTestSupervisor(t)
	if err := sv.Dump(dbPath); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	loaded, err := LoadSnapshot(dbPath)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no watches from an empty dump, got %d", len(loaded))
	}
}
