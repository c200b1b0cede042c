/*
NAME
  main.go

DESCRIPTION
  Dxtvenc is a command-line encoder: it reads an ordered sequence of
  truecolor images (and, optionally, a PCM WAV file) and writes a
  dxtvfile container plus an optional ADPCM audio sidecar, per-stage
  flags selecting which pipeline stages run (spec.md §6, "minimally,
  the encoder accepts an ordered list of image paths, an output path,
  and per-stage flags"). Logging setup is grounded on
  cmd/looper/main.go's lumberjack.Logger + logging.New construction,
  with the netsender/netlogger cloud-telemetry half dropped — this is
  an offline batch tool, not a field device.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Dxtvenc encodes an image sequence and optional audio track into the
// compact container format consumed by the fixed-function playback
// device.
package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/dxtv/codec/adpcm"
	"github.com/ausocean/dxtv/codec/pcmsource"
	"github.com/ausocean/dxtv/container/dxtvfile"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

// Logging related constants, mirroring cmd/looper/main.go's file-log
// rotation policy.
const (
	logPath      = "dxtvenc.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	var (
		outPath   = flag.String("out", "out.dxtv", "Output container path.")
		audioPath = flag.String("audio", "", "Optional input PCM WAV file to encode as an ADPCM sidecar.")
		audioOut  = flag.String("audio-out", "out.adpcm", "Output path for the ADPCM sidecar, if -audio is set.")
		fps       = flag.Int("fps", 12, "Frames per second recorded in the file header.")
		maxColors = flag.Int("maxcolors", 16, "Maximum palette size for the paletted stage.")
		maxErr    = flag.Float64("maxblockerror", 0.1, "DXTV per-block error threshold, [0.01,1].")
		lookahead = flag.Int("lookahead", adpcm.DefaultLookahead, "ADPCM encoder lookahead depth.")
		logLevel  = flag.Int("loglevel", int(logVerbosity), "Log verbosity (logging package levels).")
		watch     = flag.Bool("watch", false, "Watch the directory of the last image argument and re-encode on new files.")

		useDXTV       = flag.Bool("dxtv", true, "Run the DXTV stage.")
		useDXT        = flag.Bool("dxt", false, "Run the whole-frame DXT1 stage instead of DXTV.")
		usePaletted   = flag.Bool("paletted", false, "Quantize each frame to a private palette before encoding.")
		useCommon     = flag.Bool("commonpalette", false, "Quantize the whole sequence to one shared palette.")
		useLZ10       = flag.Bool("lz10", false, "Run the LZ10 stage after the codec stage.")
		useRLE        = flag.Bool("rle", false, "Run the RLE stage after the codec stage.")
		useDelta8     = flag.Bool("delta8", false, "Run the Delta8 stage before the codec stage.")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(int8(*logLevel), io.MultiWriter(fileLog, os.Stderr), logSuppress)

	images := flag.Args()
	if len(images) == 0 {
		l.Fatal("no input images given")
	}

	cfg := &config.Config{
		Logger:        l,
		LogLevel:      int8(*logLevel),
		MaxBlockError: *maxErr,
		Lookahead:     *lookahead,
	}

	stageOpts := stageOptions{
		useDXTV:     *useDXTV,
		useDXT:      *useDXT,
		usePaletted: *usePaletted,
		useCommon:   *useCommon,
		useLZ10:     *useLZ10,
		useRLE:      *useRLE,
		useDelta8:   *useDelta8,
		maxColors:   *maxColors,
		maxError:    *maxErr,
	}

	if err := encodeOnce(images, *outPath, uint8(*fps), stageOpts, cfg); err != nil {
		l.Fatal("encode failed", "error", err)
	}

	if *audioPath != "" {
		if err := encodeAudio(*audioPath, *audioOut, *lookahead); err != nil {
			l.Fatal("audio encode failed", "error", err)
		}
	}

	if *watch {
		dir := filepath.Dir(images[len(images)-1])
		if err := watchAndReencode(dir, images, *outPath, uint8(*fps), stageOpts, cfg, l); err != nil {
			l.Fatal("watch failed", "error", err)
		}
	}
}

// stageOptions bundles the per-stage CLI flags into one value passed
// to stageDescriptors.
type stageOptions struct {
	useDXTV, useDXT, usePaletted, useCommon, useLZ10, useRLE, useDelta8 bool
	maxColors                                                          int
	maxError                                                           float64
}

// encodeOnce decodes images, runs the pipeline over them and writes
// the resulting container to outPath.
func encodeOnce(imagePaths []string, outPath string, fps uint8, opts stageOptions, cfg *config.Config) error {
	frames, err := loadFrames(imagePaths)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: load frames")
	}
	if len(frames) == 0 {
		return errors.New("dxtvenc: no frames decoded")
	}
	width, height := frames[0].Width, frames[0].Height
	cfg.Width, cfg.Height, cfg.FPS = uint(width), uint(height), fps

	descs, err := stageDescriptors(opts)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: build stage descriptors")
	}
	cfg.Stages = descs
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "dxtvenc: invalid configuration")
	}

	stages, err := buildStages(width, height, cfg)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: build stages")
	}
	p := pipeline.New(stages, cfg.Logger)

	encoded, err := p.ProcessBatch(frames)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: process batch")
	}

	out := make([]dxtvfile.Frame, len(encoded))
	for i, data := range encoded {
		out[i] = dxtvfile.Frame{Data: data}
	}

	var maxMem uint32
	for _, st := range stages {
		if s := st.ScratchSize(); s > maxMem {
			maxMem = s
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: create output file")
	}
	defer f.Close()

	return dxtvfile.Write(f, out, width, height, fps, 16, maxMem)
}

// encodeAudio reads a PCM WAV file and writes its ADPCM encoding
// (header-prefixed, per codec/adpcm) to outPath.
func encodeAudio(inPath, outPath string, lookahead int) error {
	src, err := pcmsource.Load(inPath)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: load audio")
	}
	encoded, err := adpcm.Encode(src.Samples, src.Channels, lookahead)
	if err != nil {
		return errors.Wrap(err, "dxtvenc: adpcm encode")
	}
	return os.WriteFile(outPath, encoded, 0o644)
}

// watchAndReencode re-runs encodeOnce whenever a file in dir is
// created or written, adding it to the image list if it is not already
// there (an optional CLI convenience for batch-encoding a still-growing
// image sequence).
func watchAndReencode(dir string, images []string, outPath string, fps uint8, opts stageOptions, cfg *config.Config, l logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "dxtvenc: create watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(err, "dxtvenc: watch directory")
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			known := false
			for _, p := range images {
				if p == ev.Name {
					known = true
					break
				}
			}
			if !known {
				images = append(images, ev.Name)
				sort.Strings(images)
			}
			l.Info("re-encoding after directory change", "file", ev.Name)
			if err := encodeOnce(images, outPath, fps, opts, cfg); err != nil {
				l.Error("re-encode failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Error("watcher error", "error", err)
		}
	}
}
