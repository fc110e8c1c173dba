// Command midimon prints MIDI messages read from a raw byte stream, such as
// /dev/snd/midiC1D0 or a pipe, and can echo them to another device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oy3o/midi"
	"github.com/oy3o/midi/port"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	var (
		inPath  = flag.String("in", "-", "raw MIDI input, - for stdin")
		outPath = flag.String("out", "", "raw MIDI output for thru, empty to disable")
		cfgPath = flag.String("config", "", "port config YAML")
		logPath = flag.String("log", "", "log file, rotated; empty logs to stderr")
		level   = zap.LevelFlag("level", zap.InfoLevel, "log level")
		hex     = flag.Bool("hex", false, "print wire bytes instead of decoded messages")
	)
	flag.Parse()

	log := newLogger(*logPath, *level)
	defer log.Sync()

	if err := run(log, *inPath, *outPath, *cfgPath, *hex); err != nil {
		log.Error("midimon failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(path string, level zapcore.Level) *zap.Logger {
	var ws zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if path != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, ws, level))
}

func run(log *zap.Logger, inPath, outPath, cfgPath string, hex bool) error {
	cfg := port.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = port.LoadConfig(cfgPath); err != nil {
			return err
		}
	}

	sess := port.NewSession(log)
	defer sess.Close()

	r, name, err := openInput(inPath)
	if err != nil {
		return err
	}
	src := port.NewReaderSource(r)
	in, err := sess.OpenInput(name, src, cfg)
	if err != nil {
		return err
	}

	var thru *port.Output
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer f.Close()
		sink, err := port.NewWriterSink(f)
		if err != nil {
			return err
		}
		if thru, err = sess.OpenOutput(outPath, sink, cfg); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-src.Done():
		case <-ctx.Done():
		}
		in.Close()
	}()

	log.Info("listening", zap.String("in", name), zap.String("out", outPath))
	for {
		m, err := in.Recv(ctx)
		if err != nil {
			if errors.Is(err, port.ErrClosed) || errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		printMessage(os.Stdout, m, hex)
		if thru != nil {
			if err := thru.Send(m); err != nil {
				return err
			}
		}
	}

	if dropped := in.Dropped(); dropped > 0 {
		log.Warn("input overran", zap.Int64("dropped", dropped))
	}
	return src.Err()
}

func openInput(path string) (io.Reader, string, error) {
	if path == "-" {
		return os.Stdin, "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, path, nil
}

func printMessage(w io.Writer, m midi.Message, hex bool) {
	if !hex {
		fmt.Fprintln(w, m)
		return
	}
	var sb strings.Builder
	for b := range midi.Serialize(m) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	fmt.Fprintln(w, sb.String())
}
