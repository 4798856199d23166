package gitutil

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
)

// run executes a command in a directory with a fixed identity.
func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com", "GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v: %s", args, err, out)
	}
}

func TestPublish_LocalRemote(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	tmp := t.TempDir()
	work := filepath.Join(tmp, "work")
	remote := filepath.Join(tmp, "remote.git")
	for _, d := range []string{work, remote} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	run(t, remote, "init", "--bare")
	run(t, work, "init")
	run(t, work, "checkout", "-b", "main")
	run(t, work, "remote", "add", "origin", remote)
	run(t, work, "config", "user.name", "test")
	run(t, work, "config", "user.email", "test@example.com")

	md := filepath.Join(work, "zio.md")
	if err := os.WriteFile(md, []byte("## 2020\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := Publisher{Dir: work, Push: true}
	o, err := p.Publish(context.Background(), []string{"zio.md"}, "Update publication list")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !o.Committed || !o.Pushed {
		t.Fatalf("outcome: %+v", o)
	}
	o, err = p.Publish(context.Background(), []string{"zio.md"}, "again")
	if err != nil || o.Committed {
		t.Fatalf("second publish should be a no-op: %+v %v", o, err)
	}
}

type call struct{ args []string }

// fakeRunner replays canned responses and records the calls made.
type fakeRunner struct {
	seq   []resp
	calls []call
}

type resp struct {
	out, errStr string
	err         error
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) (string, string, error) {
	f.calls = append(f.calls, call{args: args})
	if len(f.calls) > len(f.seq) {
		return "", "", nil
	}
	r := f.seq[len(f.calls)-1]
	return r.out, r.errStr, r.err
}

var errGit = errors.New("exit status 1")

func TestPublish_ErrorPaths(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		push    bool
		seq     []resp
		wantErr bool
		want    Outcome
	}{
		{"add fails", false, []resp{{"", "boom", errGit}}, true, Outcome{}},
		{"nothing to commit", true, []resp{{}, {"nothing to commit, working tree clean", "", errGit}}, false, Outcome{}},
		{"no changes added", false, []resp{{}, {"", "no changes added to commit", errGit}}, false, Outcome{}},
		{"commit fails", false, []resp{{}, {"", "other error", errGit}}, true, Outcome{}},
		{"commit without push", false, []resp{{}, {}}, false, Outcome{Committed: true}},
		{"push fails", true, []resp{{}, {}, {"", "rejected", errGit}}, true, Outcome{Committed: true}},
		{"push sets upstream", true, []resp{{}, {}, {"", "fatal: The current branch main has no upstream branch.", errGit}, {"main\n", "", nil}, {}}, false, Outcome{Committed: true, Pushed: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fr := &fakeRunner{seq: tc.seq}
			o, err := Publisher{Runner: fr, Push: tc.push}.Publish(ctx, []string{"x.md"}, "msg")
			if (err != nil) != tc.wantErr || o != tc.want {
				t.Fatalf("outcome=%+v err=%v", o, err)
			}
		})
	}
}

func TestPublish_UpstreamFallbackArgs(t *testing.T) {
	fr := &fakeRunner{seq: []resp{{}, {}, {"", "has no upstream branch", errGit}, {"feature\n", "", nil}, {}}}
	if _, err := (Publisher{Runner: fr, Push: true}).Publish(context.Background(), []string{"a"}, "m"); err != nil {
		t.Fatal(err)
	}
	if got := fr.calls[4].args; !reflect.DeepEqual(got, []string{"push", "-u", "origin", "feature"}) {
		t.Fatalf("fallback args: %v", got)
	}
}

func TestPublish_NoPaths(t *testing.T) {
	fr := &fakeRunner{}
	if o, err := (Publisher{Runner: fr}).Publish(context.Background(), nil, "msg"); err != nil || o.Committed || len(fr.calls) != 0 {
		t.Fatalf("outcome=%+v err=%v calls=%d", o, err, len(fr.calls))
	}
}
