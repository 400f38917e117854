package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetRenderState clears globals between tests to avoid cross-test interference.
func resetRenderState() {
	globalVars = nil
	templateDir = ""
	embedTemplate = nil
}

func TestRenderHTML_EmbeddedOnly(t *testing.T) {
	resetRenderState()
	if err := Initialize(map[string]interface{}{"siteName": "Embedded"}, ""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	out, err := RenderHTML("mail/user-deactivate.html", map[string]interface{}{
		"displayName":   "Maya",
		"reactivateURL": "https://example.com/reactivate?token=abc",
	})
	if err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if !strings.Contains(out, "Maya") {
		t.Fatalf("expected display name in output, got %q", out)
	}
	if !strings.Contains(out, "https://example.com/reactivate?token=abc") {
		t.Fatalf("expected reactivation link in output, got %q", out)
	}
	if !strings.Contains(out, "Embedded") {
		t.Fatalf("expected global site name merged into vars, got %q", out)
	}
}

func TestRenderHTML_CreditsWarningTemplate(t *testing.T) {
	resetRenderState()
	if err := Initialize(map[string]interface{}{"siteName": "Fundeira"}, ""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	out, err := RenderHTML("mail/credits-warning", map[string]interface{}{
		"displayName": "Maya",
		"credits":     "R$ 30,00",
		"exploreURL":  "https://example.com/explore",
	})
	if err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if !strings.Contains(out, "R$ 30,00") {
		t.Fatalf("expected credit balance in output, got %q", out)
	}
}

func TestRenderHTML_DirOverridesEmbedded(t *testing.T) {
	resetRenderState()
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "mail")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	content := "OVERRIDE_USER_DEACTIVATE"
	path := filepath.Join(subDir, "user-deactivate.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp template: %v", err)
	}

	if err := Initialize(map[string]interface{}{}, tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	out, err := RenderHTML("mail/user-deactivate.html", nil)
	if err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if out != content {
		t.Fatalf("expected overridden content %q, got %q", content, out)
	}
}

func TestRenderHTML_FallbackOnDiskFailure(t *testing.T) {
	resetRenderState()
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "mail")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	// invalid template syntax forces the embedded fallback
	broken := "{{ ."
	path := filepath.Join(subDir, "user-deactivate.html")
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("failed to write broken temp template: %v", err)
	}

	if err := Initialize(map[string]interface{}{}, tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	out, err := RenderHTML("mail/user-deactivate", nil)
	if err != nil {
		t.Fatalf("RenderHTML should have fallen back to embedded template, got error: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty HTML from embedded fallback")
	}
}
