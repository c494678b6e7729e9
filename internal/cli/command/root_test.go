package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tehnewb/admingate/internal/core/service"
	"github.com/tehnewb/admingate/internal/server/gateserver"
	"github.com/tehnewb/admingate/internal/telemetry/metric"
	"github.com/tehnewb/admingate/pkg/crypto/keyseal"
)

func TestApp_Structure(t *testing.T) {
	app := App()
	if app.Name != "admingate-cli" {
		t.Errorf("name = %q", app.Name)
	}

	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"admin", "version"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	app := App()
	var out bytes.Buffer
	app.Writer = &out

	if err := app.Run([]string{"admingate-cli", "version", "--json"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if info["version"] == "" {
		t.Error("version field empty")
	}
}

func TestAdminCommands_RequireCredentials(t *testing.T) {
	tests := [][]string{
		{"admingate-cli", "admin", "add", "alice"},
		{"admingate-cli", "admin", "remove", "--target-token", "x", "alice"},
		{"admingate-cli", "admin", "rotate", "--target-token", "x", "alice"},
	}
	for _, args := range tests {
		t.Run(args[2], func(t *testing.T) {
			app := App()
			app.Writer = io.Discard
			app.ErrWriter = io.Discard
			err := app.Run(args)
			if err == nil {
				t.Fatal("expected credential error")
			}
			if !strings.Contains(err.Error(), "--token") {
				t.Errorf("err = %v, want credential guidance", err)
			}
		})
	}
}

func TestAdminAdd_RequiresUsernameArg(t *testing.T) {
	app := App()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	err := app.Run([]string{"admingate-cli", "--token", "t", "--username", "u", "admin", "add"})
	if err == nil {
		t.Fatal("expected missing-argument error")
	}
}

func TestAdminAdd_EndToEnd(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := service.NewRegistry(context.Background(), nil, log)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	cfg := gateserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := gateserver.New(cfg, reg, keyseal.NewRSAProvider(keyseal.DefaultBits), metric.NewRegistry(), log)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	tok, err := reg.Create(context.Background(), "root")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	app := App()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err = app.Run([]string{
		"admingate-cli",
		"--server", srv.Addr().String(),
		"--token", tok,
		"--username", "root",
		"admin", "add", "alice",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "delivered") {
		t.Errorf("output = %q", out.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if reg.Count() == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("count = %d, want 2", reg.Count())
}
