package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"profleet/internal/app"
)

func TestStatusPrintsSummary(t *testing.T) {
	withController(t, &stubController{
		summaryFunc: func(ctx context.Context, root string, timeout time.Duration) (app.Summary, error) {
			if root != "/srv/other" {
				t.Fatalf("expected root override, got %q", root)
			}
			return app.Summary{Root: root, Total: 8, Running: 3, Disabled: 1, Unknown: 2}, nil
		},
	})
	buf := withOutput(t, cmdStatus)

	old := statusRoot
	statusRoot = "/srv/other"
	t.Cleanup(func() { statusRoot = old })

	if err := cmdStatus.RunE(cmdStatus, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"root:     /srv/other", "total:    8", "running:  3", "idle:     4", "disabled: 1", "unknown:  2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
