package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
)

func (e *testEnv) snapshots(t *testing.T) [][]string {
	t.Helper()
	list := &SnapshotListCmd{Ref: "Tit.1"}
	if err := list.Run(e.globals); err != nil {
		t.Fatalf("snapshot list error: %v", err)
	}
	var out [][]string
	for _, line := range strings.Split(strings.TrimSpace(e.out.String()), "\n") {
		if line != "" {
			out = append(out, strings.Fields(line))
		}
	}
	e.out.Reset()
	return out
}

func TestSnapshotCmds(t *testing.T) {
	e := newTestEnv(t)
	for _, token := range []string{"hello", "world"} {
		index := 0
		if token == "world" {
			index = 1
		}
		align := &VerseAlignCmd{VerseFlags: e.verse, Index: index, Token: token}
		if err := align.Run(e.globals); err != nil {
			t.Fatalf("align %s error: %v", token, err)
		}
		e.out.Reset()
	}

	records := e.snapshots(t)
	if len(records) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(records))
	}
	newest, older := records[0], records[1]

	chapterPath := filepath.Join(e.dir, "project", "alignmentData", "tit", "1.json")
	current, err := os.ReadFile(chapterPath)
	if err != nil {
		t.Fatalf("read chapter: %v", err)
	}
	for _, digest := range []string{newest[1], newest[2]} {
		show := &SnapshotShowCmd{Digest: digest}
		if err := show.Run(e.globals); err != nil {
			t.Fatalf("snapshot show %s error: %v", digest, err)
		}
		if got := e.out.String(); got != string(current) {
			t.Errorf("snapshot %s = %s, want the saved chapter %s", digest, got, current)
		}
		e.out.Reset()
	}

	restore := &SnapshotRestoreCmd{Digest: older[1], Ref: "Tit.1"}
	if err := restore.Run(e.globals); err != nil {
		t.Fatalf("snapshot restore error: %v", err)
	}
	e.out.Reset()
	show := &VerseShowCmd{VerseFlags: e.verse}
	if err := show.Run(e.globals); err != nil {
		t.Fatalf("show error: %v", err)
	}
	v := e.view(t)
	if v.Alignments[0].Target != "hello" || v.Alignments[1].Target != "" {
		t.Errorf("restored alignments = %+v", v.Alignments)
	}
}

func TestSnapshotCmdErrors(t *testing.T) {
	e := newTestEnv(t)

	show := &SnapshotShowCmd{Digest: strings.Repeat("a", 64)}
	if err := show.Run(e.globals); !errors.Is(err, alerrors.ErrNotFound) {
		t.Errorf("unknown digest error = %v, want ErrNotFound", err)
	}
	show = &SnapshotShowCmd{Digest: "not-a-digest"}
	if err := show.Run(e.globals); !errors.Is(err, alerrors.ErrInvalidInput) {
		t.Errorf("bad digest error = %v, want ErrInvalidInput", err)
	}
	list := &SnapshotListCmd{Ref: "Tit"}
	if err := list.Run(e.globals); !errors.Is(err, alerrors.ErrInvalidInput) {
		t.Errorf("book ref error = %v, want ErrInvalidInput", err)
	}

	bare := &Globals{Config: createTestFile(t, e.dir, "bare.toml", "[storage]\nproject_dir = '"+filepath.Join(e.dir, "project")+"'\n"), out: e.out}
	show = &SnapshotShowCmd{Digest: strings.Repeat("a", 64)}
	if err := show.Run(bare); !errors.Is(err, alerrors.ErrUnsupported) {
		t.Errorf("no snapshot dir error = %v, want ErrUnsupported", err)
	}
}
