package supervisor

import (
	"testing"

	"github.com/wardenhq/warden/pkg/codec"
	"github.com/wardenhq/warden/pkg/logger"
)

// newTestServer wires a Supervisor's control plane to a Unix socket in a
// temp directory, without starting the netlink ingestor: the control
// plane's session handling doesn't depend on it, and binding a process
// connector socket requires privileges a sandboxed test run may not have.
func newTestServer(t *testing.T, watches ...*Watch) (string, *Supervisor) {
	t.Helper()
	dir := t.TempDir()
	sv := NewSupervisor(logger.Nop(), dir, "", watches)

	sockPath := dir + "/control.sock"
	srv, err := ListenAndServe(sv, sockPath)
	if err != nil {
		t.Fatalf("ListenAndServe failed: %v", err)
	}
	t.Cleanup(srv.Stop)

	return sockPath, sv
}

func TestControlSessionStatus(t *testing.T) {
	sockPath, _ := newTestServer(t, &Watch{Name: "web", Start: []string{"/bin/true"}})

	res, err := SendAction(sockPath, &codec.ActionMsg{Action: codec.ActionStatus})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}
	if len(res.Watches) != 1 || res.Watches[0].Name != "web" {
		t.Fatalf("expected status for watch web, got %+v", res.Watches)
	}
}

func TestControlSessionRunRegistersAdHocWatch(t *testing.T) {
	sockPath, sv := newTestServer(t)

	res, err := SendAction(sockPath, &codec.ActionMsg{
		Action:  codec.ActionRun,
		CmdLine: []string{"/bin/true"},
		Name:    "adhoc",
	})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}
	if len(res.Watches) != 1 || res.Watches[0].Name != "adhoc" {
		t.Fatalf("expected a watch named adhoc in the response, got %+v", res.Watches)
	}
	if _, ok := sv.Get("adhoc"); !ok {
		t.Fatal("expected the ad hoc watch to be registered in the supervisor")
	}
}

func TestControlSessionRunRejectsDuplicateName(t *testing.T) {
	sockPath, _ := newTestServer(t, &Watch{Name: "web", Start: []string{"/bin/true"}})

	res, err := SendAction(sockPath, &codec.ActionMsg{
		Action:  codec.ActionRun,
		CmdLine: []string{"/bin/true"},
		Name:    "web",
	})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}
	if len(res.Watches) != 0 {
		t.Fatalf("expected no watches back for a name collision, got %+v", res.Watches)
	}
}

func TestControlSessionRunRequiresCmdLine(t *testing.T) {
	sockPath, _ := newTestServer(t)

	res, err := SendAction(sockPath, &codec.ActionMsg{Action: codec.ActionRun})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}
	if len(res.Watches) != 0 {
		t.Fatalf("expected no watches back for a missing command line, got %+v", res.Watches)
	}
}

func TestControlSessionDumpAndLoad(t *testing.T) {
	sockPath, _ := newTestServer(t, &Watch{Name: "web", Start: []string{"/bin/true"}})
	dumpPath := t.TempDir() + "/dump"

	if _, err := SendAction(sockPath, &codec.ActionMsg{Action: codec.ActionDump, Name: dumpPath}); err != nil {
		t.Fatalf("dump SendAction failed: %v", err)
	}

	sockPath2, sv2 := newTestServer(t)
	if res, err := SendAction(sockPath2, &codec.ActionMsg{Action: codec.ActionLoad, Name: dumpPath}); err != nil {
		t.Fatalf("load SendAction failed: %v", err)
	} else if res.Message == "" {
		t.Fatal("expected a non-empty load confirmation message")
	}
	if _, ok := sv2.Get("web"); !ok {
		t.Fatal("expected the loaded watch to be registered in the second supervisor")
	}
}

func TestControlSessionReloadReturnsRestartMessage(t *testing.T) {
	sockPath, _ := newTestServer(t, &Watch{Name: "web", Start: []string{"/bin/true"}})

	res, err := SendAction(sockPath, &codec.ActionMsg{Action: codec.ActionReload})
	if err != nil {
		t.Fatalf("SendAction failed: %v", err)
	}
	if res.Message == "" {
		t.Fatal("expected a non-empty reload response message")
	}
}
