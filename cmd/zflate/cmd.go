// seehuhn.de/go/kern - generic trees and zlib streams
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/kern/buffer"
	"seehuhn.de/go/kern/deflate"
	"seehuhn.de/go/kern/zlib"
)

const envPrefix = "ZFLATE"

var errTerminal = errors.New("refusing to write compressed data to a terminal (use --force)")

type options struct {
	logLevel string
	force    bool
	level    int
}

func newRootCmd() *cobra.Command {
	opt := &options{}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "zflate",
		Short:         "Compress and decompress zlib streams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			return initLogger(opt.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&opt.logLevel, "log-level", "warning", "Log level: debug, info, warning, error")
	root.PersistentFlags().BoolVar(&opt.force, "force", false, "write compressed data even if the output is a terminal")

	compress := &cobra.Command{
		Use:   "compress [in [out]]",
		Short: "Compress data into a zlib stream",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, args, func(in io.Reader, out io.Writer) error {
				if !opt.force && isTerminal(out) {
					return errTerminal
				}
				return runCompress(in, out, opt.level)
			})
		},
	}
	compress.Flags().IntVarP(&opt.level, "level", "l", deflate.DefaultLevel,
		"compression level, 0 (stored blocks) to 9")

	decompress := &cobra.Command{
		Use:   "decompress [in [out]]",
		Short: "Decompress a zlib stream",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, args, runDecompress)
		},
	}

	info := &cobra.Command{
		Use:   "info [in]",
		Short: "Show the header, blocks and checksum of a zlib stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, args, runInfo)
		},
	}

	root.AddCommand(compress, decompress, info)
	return root
}

// bindFlags sets all flags which were not given on the command line from
// the environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if e := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); e != nil && err == nil {
			err = fmt.Errorf("%s_%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), e)
		}
	})
	return err
}

func initLogger(level string) error {
	ll, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true})
	return nil
}

// withFiles opens the input and output named in args, with "-" or a
// missing argument standing for standard input and output.
func withFiles(cmd *cobra.Command, args []string, run func(io.Reader, io.Writer) error) error {
	in := cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()
		in = fd
	}

	out := cmd.OutOrStdout()
	if len(args) > 1 && args[1] != "-" {
		fd, err := os.Create(args[1])
		if err != nil {
			return err
		}
		err = run(in, fd)
		if e := fd.Close(); err == nil {
			err = e
		}
		return err
	}
	return run(in, out)
}

func isTerminal(w io.Writer) bool {
	fd, ok := w.(*os.File)
	return ok && term.IsTerminal(int(fd.Fd()))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func runCompress(in io.Reader, out io.Writer, level int) error {
	cw := &countingWriter{w: out}
	zw, err := zlib.NewWriter(cw, &zlib.Options{Level: level})
	if err != nil {
		return err
	}
	n, err := io.Copy(zw, in)
	if err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"level": level,
		"in":    n,
		"out":   cw.n,
	}).Info("compressed")
	return nil
}

func runDecompress(in io.Reader, out io.Writer) error {
	zr := zlib.NewReader(in)
	defer zr.Close()
	n, err := io.Copy(out, zr)
	if err != nil {
		return err
	}
	log.WithField("out", n).Info("decompressed")
	return nil
}

func runInfo(in io.Reader, out io.Writer) error {
	r := buffer.NewReader(in)
	dst := &buffer.Buffer{}
	var blocks []deflate.BlockInfo
	h, err := zlib.DecompressTo(dst, r, func(info deflate.BlockInfo) {
		blocks = append(blocks, info)
	})
	if h == nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "method:       %d\n", h.Method)
	p.Fprintf(out, "window:       %d bytes\n", 1<<h.WindowBits)
	p.Fprintf(out, "level hint:   %d\n", h.Level)
	if h.HasDict {
		p.Fprintf(out, "dictionary:   %08x\n", h.DictID)
	}
	p.Fprintf(out, "blocks:       %d\n", len(blocks))
	for i, b := range blocks {
		final := ""
		if b.Final {
			final = " (final)"
		}
		p.Fprintf(out, "  %3d  %-15s  in@%-10d out@%-10d %10d bytes%s\n",
			i, b.Type.String(), b.InputPos, b.Output, b.Size, final)
	}
	p.Fprintf(out, "output size:  %d\n", dst.Len())

	var ce *zlib.ChecksumError
	switch {
	case err == nil:
		fmt.Fprintln(out, "checksum:     ok")
	case errors.As(err, &ce):
		fmt.Fprintf(out, "checksum:     mismatch (stored %08x, computed %08x)\n", ce.Want, ce.Got)
	default:
		fmt.Fprintf(out, "error:        %v\n", err)
	}
	return err
}
