package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperAligner/core/alignment"
	alerrors "github.com/FocuswithJustin/JuniperAligner/core/errors"
	"github.com/FocuswithJustin/JuniperAligner/core/ref"
	"github.com/FocuswithJustin/JuniperAligner/internal/logging"
)

// SnapshotGroup contains operations on the chapter snapshots taken at
// every save.
type SnapshotGroup struct {
	List    SnapshotListCmd    `cmd:"" help:"List a chapter's snapshots, newest first"`
	Show    SnapshotShowCmd    `cmd:"" help:"Print a snapshot by SHA-256 or BLAKE3 digest"`
	Restore SnapshotRestoreCmd `cmd:"" help:"Write a snapshot back as a chapter's alignment data"`
}

func chapterRef(arg string) (*ref.Ref, error) {
	r, err := ref.Parse(arg)
	if err != nil {
		return nil, err
	}
	if r.Chapter == 0 {
		return nil, alerrors.NewValidation("ref", fmt.Sprintf("%s does not name a chapter", arg))
	}
	return r, nil
}

// snapshot reads a snapshot by either of its digests.
func (e *env) snapshot(digest string) ([]byte, error) {
	if e.snapshots == nil {
		return nil, alerrors.NewUnsupported("snapshots", "storage.snapshot_dir is not configured")
	}
	digest = strings.ToLower(strings.TrimSpace(digest))
	if e.snapshots.Exists(digest) {
		return e.snapshots.Get(digest)
	}
	return e.snapshots.GetByBlake3(digest)
}

// SnapshotListCmd lists snapshots.
type SnapshotListCmd struct {
	Ref string `arg:"" help:"Chapter reference (e.g. Tit.1)"`
}

func (c *SnapshotListCmd) Run(g *Globals) error {
	r, err := chapterRef(c.Ref)
	if err != nil {
		return err
	}
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()
	if e.store == nil {
		return alerrors.NewUnsupported("snapshot list", "storage.database is not configured")
	}

	records, err := e.store.Snapshots(context.Background(), r.BookID(), r.Chapter)
	if err != nil {
		return err
	}
	w := g.stdout()
	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), rec.Digest.SHA256, rec.Digest.BLAKE3)
	}
	return nil
}

// SnapshotShowCmd prints a snapshot.
type SnapshotShowCmd struct {
	Digest string `arg:"" help:"SHA-256 or BLAKE3 digest"`
}

func (c *SnapshotShowCmd) Run(g *Globals) error {
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := e.snapshot(c.Digest)
	if err != nil {
		return err
	}
	_, err = g.stdout().Write(data)
	return err
}

// SnapshotRestoreCmd restores a chapter from a snapshot.
type SnapshotRestoreCmd struct {
	Digest string `arg:"" help:"SHA-256 or BLAKE3 digest"`
	Ref    string `required:"" help:"Chapter reference to restore (e.g. Tit.1)"`
}

func (c *SnapshotRestoreCmd) Run(g *Globals) error {
	r, err := chapterRef(c.Ref)
	if err != nil {
		return err
	}
	e, err := g.open()
	if err != nil {
		return err
	}
	defer e.Close()

	raw, err := e.snapshot(c.Digest)
	if err != nil {
		return err
	}
	var data alignment.LegacyChapter
	if err := json.Unmarshal(raw, &data); err != nil {
		return &alerrors.ParseError{Format: "snapshot", Path: c.Digest, Message: err.Error()}
	}
	if err := e.project.WriteChapter(r.BookID(), r.Chapter, data); err != nil {
		return err
	}
	logging.Info("snapshot_restored", "ref", r.String(), "digest", c.Digest)
	fmt.Fprintf(g.stdout(), "Restored %s from %s\n", r, c.Digest)
	return nil
}
