package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"wareeye/internal/parse"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Write the camera info file, prompting for each value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive(os.Stdin) {
				return errors.New("setup needs an interactive terminal")
			}
			path := ctx.cfg.Scanner.CameraInfoPath

			prev, err := readCameraInfo(path)
			if errors.Is(err, fs.ErrNotExist) {
				prev, err = &parse.CameraInfo{}, nil
			}
			if err != nil {
				return err
			}

			info, err := promptCameraInfo(cmd.InOrStdin(), cmd.OutOrStdout(), prev)
			if err != nil {
				return err
			}
			if err := writeCameraInfo(path, info); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Camera info written to %s\n", path)
			return nil
		},
	}
}

func isInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptCameraInfo asks for every key, offering prev's value as the default.
func promptCameraInfo(in io.Reader, out io.Writer, prev *parse.CameraInfo) (*parse.CameraInfo, error) {
	reader := bufio.NewReader(in)
	info := &parse.CameraInfo{}
	for _, key := range parse.Keys() {
		def := prev.Get(key)
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", key, def)
		} else {
			fmt.Fprintf(out, "%s: ", key)
		}
		// At end of input the remaining keys keep their defaults.
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		value := strings.TrimSpace(line)
		if value == "" {
			value = def
		}
		info.Set(key, value)
	}
	return info, nil
}

// writeCameraInfo replaces the file at path under an exclusive lock on
// path+".lock". Readers take the shared lock through readCameraInfo.
func writeCameraInfo(path string, info *parse.CameraInfo) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock camera info: %w", err)
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	if err := parse.FormatCameraInfo(&buf, info); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
