// Package backup provides tar.gz-based backup and restore for cinelens data.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HerbHall/cinelens/internal/store"
)

// ErrExists is returned by Restore when a target file exists and force is
// not set.
var ErrExists = errors.New("file already exists")

// maxEntryBytes caps a single archive entry on restore.
const maxEntryBytes = 1 << 30

// Backup creates a tar.gz archive containing the SQLite database and an
// optional config file. The WAL is checkpointed first so the database file
// alone is consistent.
func Backup(ctx context.Context, dbPath, configPath, outputPath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("database file not found: %w", err)
	}

	if err := checkpointWAL(ctx, dbPath); err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	gw := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gw)

	if err := addFileToTar(tw, dbPath, filepath.Base(dbPath)); err != nil {
		return fmt.Errorf("adding database to archive: %w", err)
	}

	// A missing config file is skipped.
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := addFileToTar(tw, configPath, filepath.Base(configPath)); err != nil {
				return fmt.Errorf("adding config to archive: %w", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return outFile.Close()
}

func checkpointWAL(ctx context.Context, dbPath string) error {
	s, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Checkpoint(ctx)
}

func addFileToTar(tw *tar.Writer, filePath, archiveName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = archiveName

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}

// Restore extracts a Backup archive into dataDir. Existing files are only
// replaced when force is set, and any stale WAL or shared-memory files next
// to a restored database are removed. It returns the restored file names.
func Restore(ctx context.Context, input, dataDir string, force bool) ([]string, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	var restored []string
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return restored, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return restored, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, err := entryName(hdr.Name)
		if err != nil {
			return restored, err
		}
		target := filepath.Join(dataDir, name)
		if _, err := os.Stat(target); err == nil && !force {
			return restored, fmt.Errorf("%s: %w (use --force to overwrite)", target, ErrExists)
		}

		if err := writeEntry(tr, target, hdr.Size); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", name, err)
		}
		if strings.HasSuffix(name, ".db") {
			for _, suffix := range []string{"-wal", "-shm"} {
				if err := os.Remove(target + suffix); err != nil && !os.IsNotExist(err) {
					return restored, fmt.Errorf("removing stale %s: %w", target+suffix, err)
				}
			}
		}
		restored = append(restored, name)
	}

	if len(restored) == 0 {
		return nil, errors.New("archive contains no files")
	}
	return restored, nil
}

// entryName rejects archive names that would escape the data directory.
func entryName(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if clean != name || clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("unsafe archive entry %q", name)
	}
	return clean, nil
}

func writeEntry(r io.Reader, target string, size int64) error {
	if size > maxEntryBytes {
		return fmt.Errorf("entry too large (%d bytes)", size)
	}

	tmp := target + ".restore"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(out, r, size); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, target)
}
