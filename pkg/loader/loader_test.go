package loader

import (
	"os/user"
	"testing"

	"github.com/wardenhq/warden/pkg/config"
)

func TestResolveRequiresName(t *testing.T) {
	_, err := Resolve(config.Watch{Start: []string{"/bin/true"}})
	if err == nil {
		t.Fatal("expected an error for a watch with no name")
	}
}

func TestResolveRequiresStartCommand(t *testing.T) {
	_, err := Resolve(config.Watch{Name: "web"})
	if err == nil {
		t.Fatal("expected an error for a watch with no start command")
	}
}

func TestResolveLeavesUidGidUnsetWithoutUserOrGroup(t *testing.T) {
	w, err := Resolve(config.Watch{Name: "web", Start: []string{"/bin/true"}})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if w.UidSet || w.GidSet {
		t.Fatalf("expected UidSet/GidSet to stay false without User/Group, got %+v", w)
	}
}

func TestResolveCopiesEnvAndStartCommand(t *testing.T) {
	w, err := Resolve(config.Watch{
		Name:  "web",
		Start: []string{"/usr/bin/serve", "--port", "8080"},
		Env:   map[string]string{"FOO": "bar"},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(w.Start) != 3 || w.Start[0] != "/usr/bin/serve" {
		t.Fatalf("expected start command to be copied verbatim, got %v", w.Start)
	}
	if len(w.Env) != 1 || w.Env[0] != "FOO=bar" {
		t.Fatalf("expected env to be flattened to KEY=VALUE, got %v", w.Env)
	}
}

func TestResolveUserAndGroup(t *testing.T) {
	current, err := user.Current()
	if err != nil {
		t.Skip("no current user available in this environment")
	}

	w, err := Resolve(config.Watch{
		Name:  "web",
		Start: []string{"/bin/true"},
		User:  current.Username,
	})
	if err != nil {
		t.Fatalf("Resolve failed against the current user: %v", err)
	}
	if !w.UidSet {
		t.Fatal("expected UidSet once a valid User is given")
	}
	if !w.GidSet {
		t.Fatal("expected GidSet to be derived from the user's primary group when Group is empty")
	}
}

func TestResolveUnknownUserFails(t *testing.T) {
	_, err := Resolve(config.Watch{
		Name:  "web",
		Start: []string{"/bin/true"},
		User:  "a-user-that-almost-certainly-does-not-exist-42",
	})
	if err == nil {
		t.Fatal("expected an error resolving an unknown user")
	}
}

func TestResolveAllStopsAtFirstError(t *testing.T) {
	_, err := ResolveAll(&config.Config{
		Watches: []config.Watch{
			{Name: "good", Start: []string{"/bin/true"}},
			{Name: "", Start: []string{"/bin/true"}},
		},
	})
	if err == nil {
		t.Fatal("expected ResolveAll to fail when any watch fails to resolve")
	}
}
