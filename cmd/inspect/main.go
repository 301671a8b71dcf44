package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"vision-inspect/config"
	"vision-inspect/internal/container"
	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/infrastructure/describer"
	"vision-inspect/internal/infrastructure/imagefile"
	"vision-inspect/internal/infrastructure/vision"
	"vision-inspect/internal/logger"
)

const (
	flagInput     = "input"
	flagReference = "reference"
	flagEngine    = "engine"
	flagPolicy    = "policy"
	flagThreshold = "threshold"
	flagBlockSize = "block-size"
	flagOffset    = "offset"
	flagTolerance = "tolerance"
	flagAnnotate  = "annotate"
	flagColor     = "color"
	flagOutput    = "output"
	flagEdges     = "edges"
	flagLogLevel  = "log-level"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "inspect",
		Usage:     "compare a photo of an item with a known-good reference and report defects",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.PathFlag{Name: flagInput, Aliases: []string{"i"}, Usage: "path to the input image"},
			&cli.PathFlag{Name: flagReference, Aliases: []string{"r"}, Usage: "path to the reference image"},
			&cli.StringFlag{Name: flagEngine, Usage: "comparison engine: bild or gocv"},
			&cli.StringFlag{Name: flagPolicy, Usage: "binarization policy: fixed or adaptive"},
			&cli.IntFlag{Name: flagThreshold, Usage: "fixed policy threshold, 0..255"},
			&cli.IntFlag{Name: flagBlockSize, Usage: "adaptive policy neighbourhood, positive odd"},
			&cli.IntFlag{Name: flagOffset, Usage: "adaptive policy offset"},
			&cli.IntFlag{Name: flagTolerance, Usage: "defect is reported when more than this many pixels differ"},
			&cli.BoolFlag{Name: flagAnnotate, Usage: "render and save the highlighted image"},
			&cli.StringFlag{Name: flagColor, Usage: "highlight color as #rrggbb"},
			&cli.PathFlag{Name: flagOutput, Aliases: []string{"o"}, Usage: "where to save the highlighted image"},
			&cli.PathFlag{Name: flagEdges, Usage: "optionally save the edge map of the normalized input"},
			&cli.StringFlag{Name: flagLogLevel, Usage: "log level"},
		},
		Action: func(c *cli.Context) error {
			return run(c, stdout, stderr)
		},
	}
}

func run(c *cli.Context, stdout, stderr io.Writer) error {
	inputPath := c.Path(flagInput)
	referencePath := c.Path(flagReference)
	if inputPath == "" || referencePath == "" {
		if err := cli.ShowAppHelp(c); err != nil {
			return err
		}
		return cli.Exit("", 1)
	}

	// Флаги подменяют переменные окружения, проверка настроек одна.
	cfg, err := config.LoadWith(flagLookup(c))
	if err != nil {
		return err
	}

	log, err := logger.NewWithOutput(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	for _, path := range []string{inputPath, referencePath} {
		err := imagefile.Exists(path)
		if errors.Is(err, entity.ErrFileNotFound) {
			fmt.Fprintf(stdout, "File %s does not exist!\n", path)
			return cli.Exit("", 1)
		}
		if err != nil {
			return err
		}
	}

	detector, err := container.NewDetector(cfg, log)
	if err != nil {
		return err
	}

	input, err := imagefile.Load(inputPath)
	if err != nil {
		return err
	}
	reference, err := imagefile.Load(referencePath)
	if err != nil {
		return err
	}

	verdict, err := detector.Compare(c.Context, input, reference)
	if err != nil {
		return err
	}

	if verdict.Present {
		fmt.Fprintln(stdout, describer.MsgDefectFound)
	} else {
		fmt.Fprintln(stdout, describer.MsgNoDefects)
	}

	if verdict.Annotated != nil {
		if err := imagefile.Save(verdict.Annotated, cfg.OutputPath); err != nil {
			return err
		}
		log.WithField("path", cfg.OutputPath).Info("highlighted image saved")
	}

	if path := c.Path(flagEdges); path != "" {
		if err := saveEdges(input, path, log); err != nil {
			return err
		}
	}

	return nil
}

// Какой переменной окружения соответствует флаг.
var flagEnv = map[string]string{
	flagEngine:    config.EnvEngine,
	flagPolicy:    config.EnvPolicy,
	flagThreshold: config.EnvThreshold,
	flagBlockSize: config.EnvBlockSize,
	flagOffset:    config.EnvOffset,
	flagTolerance: config.EnvTolerance,
	flagAnnotate:  config.EnvAnnotate,
	flagColor:     config.EnvMarkColor,
	flagOutput:    config.EnvOutput,
	flagLogLevel:  config.EnvLogLevel,
}

// flagLookup отдаёт значение явно заданного флага вместо переменной окружения.
func flagLookup(c *cli.Context) func(string) (string, bool) {
	byEnv := make(map[string]string, len(flagEnv))
	for flag, env := range flagEnv {
		byEnv[env] = flag
	}

	return func(key string) (string, bool) {
		if flag, ok := byEnv[key]; ok && c.IsSet(flag) {
			switch flag {
			case flagThreshold, flagBlockSize, flagOffset, flagTolerance:
				return strconv.Itoa(c.Int(flag)), true
			case flagAnnotate:
				return strconv.FormatBool(c.Bool(flag)), true
			default:
				return c.String(flag), true
			}
		}
		return os.LookupEnv(key)
	}
}

func saveEdges(input image.Image, path string, log logrus.FieldLogger) error {
	gray, err := vision.Normalize(input)
	if err != nil {
		return err
	}
	if err := imagefile.Save(vision.EdgeMap(gray), path); err != nil {
		return err
	}
	log.WithField("path", path).Info("edge map saved")
	return nil
}
