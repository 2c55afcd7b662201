package resolver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/server/logging"
)

// Subprocess is a Resolver that shells out to an external merge tool,
// serializing destination/merged/source into three files under a scratch
// directory and reading the merged document back from the merged file
// once the tool exits zero, per the canonical three-file protocol.
type Subprocess struct {
	conf   Config
	logger logging.Logger
}

// New returns a Subprocess resolver that runs conf.Command.
func New(conf Config) *Subprocess {
	return &Subprocess{conf: conf, logger: logging.New("resolver")}
}

// Resolve writes destination, merged and source to a temporary directory as
// `destination`, `merged` and `source`, runs the configured command with
// those three paths appended after conf.Args, and reads the tool's edited
// `merged` file back. A non-zero exit, a timeout, or a merged file that
// cannot be read back are all reported as resolution failure; a merged file
// the tool left unchanged is returned as it stands. The caller decides
// whether to leave a failed conflict for a later retry.
func (r *Subprocess) Resolve(ctx context.Context, destination, source, merged codec.Value) (codec.Value, error) {
	dir, err := os.MkdirTemp("", "mongovc-resolve-*")
	if err != nil {
		return codec.Value{}, fmt.Errorf("resolver: create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	destPath := filepath.Join(dir, "destination")
	mergedPath := filepath.Join(dir, "merged")
	sourcePath := filepath.Join(dir, "source")

	if err := writeValueFile(destPath, destination); err != nil {
		return codec.Value{}, err
	}
	if err := writeValueFile(mergedPath, merged); err != nil {
		return codec.Value{}, err
	}
	if err := writeValueFile(sourcePath, source); err != nil {
		return codec.Value{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.conf.Timeout)
	defer cancel()

	args := append(append([]string(nil), r.conf.Args...), destPath, mergedPath, sourcePath)
	cmd := exec.CommandContext(runCtx, r.conf.Command, args...)
	if err := cmd.Run(); err != nil {
		return codec.Value{}, fmt.Errorf("resolver: %s exited without resolving: %w", r.conf.Command, err)
	}

	resolved, err := readValueFile(mergedPath)
	if err != nil {
		return codec.Value{}, fmt.Errorf("resolver: read resolved document: %w", err)
	}
	r.logger.Infof("resolved conflict via %s", r.conf.Command)
	return resolved, nil
}

func writeValueFile(path string, v codec.Value) error {
	data, err := codec.EncodeValueBytes(v)
	if err != nil {
		return fmt.Errorf("resolver: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("resolver: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readValueFile(path string) (codec.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return codec.Value{}, err
	}
	return codec.DecodeValueBytes(data)
}
