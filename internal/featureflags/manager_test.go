package featureflags

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "u1") || !m.Enabled("c", "u1") || !m.Enabled("e", "u1") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "u1") || m.Enabled("d", "u1") || m.Enabled("f", "u1") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("missing", "u1") {
		t.Fatal("unknown flags are off")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", "") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "u1") {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", "user-42")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "user-42"); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}
	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a user")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,X=on, y = 20% ,z=off ")

	snap := m.Snapshot("u1")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}

func TestRequire(t *testing.T) {
	m := NewManager(LiveSearch + "=on," + FollowingFeed + "=off")
	app := fiber.New()
	app.Get("/search", m.Require(LiveSearch), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/following", m.Require(FollowingFeed), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for path, want := range map[string]int{"/search": http.StatusOK, "/following": http.StatusNotFound} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: got %d, want %d", path, resp.StatusCode, want)
		}
	}
}
