package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/bibscrape/internal/library"
)

type fakeClient struct {
	remote    map[string]bool
	uploads   map[string]string
	uploadErr error
}

func (f *fakeClient) Exists(_ context.Context, p string) (bool, error) {
	return f.remote[p], nil
}

func (f *fakeClient) Upload(_ context.Context, local, remote string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if f.uploads == nil {
		f.uploads = make(map[string]string)
	}
	f.uploads[remote] = local
	return nil
}

func (f *fakeClient) Close() error { return nil }

func writePDF(t *testing.T, papersDir, key string) string {
	t.Helper()
	p := library.LocalPath(papersDir, key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPush(t *testing.T) {
	papers := t.TempDir()
	local := writePDF(t, papers, "Public2019DeepLearning")
	writePDF(t, papers, "Smith2020Graphs")

	client := &fakeClient{remote: map[string]bool{
		"/srv/papers/s/Smith2020Graphs.pdf": true,
	}}

	keys := []string{"Public2019DeepLearning", "Smith2020Graphs", "Doe2001Missing"}
	result, err := Push(context.Background(), client, keys, papers, "/srv/papers/")
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	want := &PushResult{
		Uploaded: []string{"Public2019DeepLearning"},
		Present:  []string{"Smith2020Graphs"},
		Missing:  []string{"Doe2001Missing"},
	}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Push() = %+v, want %+v", result, want)
	}
	if got := client.uploads["/srv/papers/p/Public2019DeepLearning.pdf"]; got != local {
		t.Errorf("uploaded from %q, want %q", got, local)
	}
}

func TestPush_UploadError(t *testing.T) {
	papers := t.TempDir()
	writePDF(t, papers, "Public2019DeepLearning")

	uploadErr := errors.New("broken pipe")
	client := &fakeClient{uploadErr: uploadErr}

	result, err := Push(context.Background(), client, []string{"Public2019DeepLearning"}, papers, "/srv")
	if !errors.Is(err, uploadErr) {
		t.Errorf("Push() error = %v, want %v", err, uploadErr)
	}
	if len(result.Uploaded) != 0 {
		t.Errorf("Uploaded = %v, want none", result.Uploaded)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
	}
	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestUploadCommand(t *testing.T) {
	got := uploadCommand("/srv/papers/p/Public2019DeepLearning.pdf")
	want := "mkdir -p '/srv/papers/p' && cat > '/srv/papers/p/Public2019DeepLearning.pdf'"
	if got != want {
		t.Errorf("uploadCommand() = %q, want %q", got, want)
	}
}

func TestHostPort(t *testing.T) {
	tests := map[string]string{
		"example.org":      "example.org:22",
		"example.org:2222": "example.org:2222",
	}
	for in, want := range tests {
		if got := hostPort(in); got != want {
			t.Errorf("hostPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrapSSHError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		proxyJump string
		want      string
	}{
		{"auth", fmt.Errorf("ssh: handshake failed: ssh: no supported methods remain"), "", `SSH authentication failed for host01 as user "me"`},
		{"timeout", fmt.Errorf("dial tcp: i/o timeout"), "", "connection to host01 timed out"},
		{"proxy timeout", fmt.Errorf("dial tcp jump.example.com:22: i/o timeout"), "jump.example.com", "cannot reach proxy jump.example.com: connection timed out"},
		{"refused", fmt.Errorf("dial tcp: connection refused"), "", "connection refused by host01"},
		{"other", fmt.Errorf("something unexpected"), "", "SSH error connecting to host01: something unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapSSHError(tt.err, "host01", tt.proxyJump, "me").Error()
			if !strings.Contains(got, tt.want) {
				t.Errorf("wrapSSHError() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestNewSSHClient_Validation(t *testing.T) {
	if _, err := NewSSHClient(Config{}); err == nil {
		t.Error("NewSSHClient() without host should fail")
	}

	t.Setenv("SSH_AUTH_SOCK", "")
	_, err := NewSSHClient(Config{Host: "example.org"})
	if err == nil || !strings.Contains(err.Error(), "SSH agent not running") {
		t.Errorf("NewSSHClient() error = %v, want agent error", err)
	}
}
