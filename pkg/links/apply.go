package links

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"

	"github.com/yamaton/condax/pkg/errors"
)

// batch collects changes to the bin directory so they run as one synthfs
// pipeline.
type batch struct {
	sfs *synthfs.SynthFS
	ops []synthfs.Operation
}

func newBatch() *batch {
	return &batch{sfs: synthfs.New()}
}

func (b *batch) empty() bool { return len(b.ops) == 0 }

func notExist(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, fs.ErrNotExist)
}

// write replaces whatever is at path with a wrapper of mode perm.
func (b *batch) write(m *Manager, path string, content []byte, perm os.FileMode) {
	id := fmt.Sprintf("write_%s_%d", filepath.Base(path), len(b.ops))
	b.ops = append(b.ops, b.sfs.CustomOperationWithID(id, func(ctx context.Context, bin filesystem.FileSystem) error {
		if err := bin.Remove(path); err != nil && !notExist(err) {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", path)
		}
		if err := bin.WriteFile(path, content, perm); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
		}
		// WriteFile is subject to the umask.
		if err := m.fs.Chmod(path, perm); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to chmod %s", path)
		}
		return nil
	}))
}

// remove deletes path. A path that is already gone is not an error.
func (b *batch) remove(path string) {
	id := fmt.Sprintf("remove_%s_%d", filepath.Base(path), len(b.ops))
	b.ops = append(b.ops, b.sfs.CustomOperationWithID(id, func(ctx context.Context, bin filesystem.FileSystem) error {
		if err := bin.Remove(path); err != nil && !notExist(err) {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", path)
		}
		return nil
	}))
}

// binFS is the filesystem synthfs operations run against. Paths handed to
// it are absolute.
func binFS(binDir string) filesystem.FullFileSystem {
	root := filepath.VolumeName(binDir) + string(filepath.Separator)
	return synthfs.NewPathAwareFileSystem(filesystem.NewOSFileSystem(root), root).WithAbsolutePaths()
}

// apply runs every queued operation, stopping at the first failure.
func (m *Manager) apply(b *batch) error {
	if b.empty() {
		return nil
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = false

	m.logger.Debug().Int("operationCount", len(b.ops)).Msg("Applying bin directory changes")
	if _, err := synthfs.RunWithOptions(context.Background(), m.binFS, options, b.ops...); err != nil {
		if errors.GetErrorCode(err) != errors.ErrUnknown {
			return err
		}
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to update %s", m.binDir)
	}
	return nil
}
