package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/config"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/joho/godotenv"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

// Everything a command needs, after the common flags have been processed
type app struct {
	log     logs.Log
	cfg     *config.Config
	classes *dataset.ClassMap
}

func main() {
	// .env is optional. It usually holds GOOGLE_APPLICATION_CREDENTIALS and GCP_PROJECT_ID.
	_ = godotenv.Load()

	logger, err := logs.NewLog()
	check(err)

	parser := argparse.NewParser("seqlabel", "Build, cache, and export bounding box labels for a sequence dataset")
	configFile := parser.String("c", "config", &argparse.Options{Help: "JSON config file (local path or gs://bucket/object)"})
	classFile := parser.String("", "classes", &argparse.Options{Help: "Class names file, one per line (overrides the config). Local path or gs://bucket/object"})

	scanCmd := parser.NewCommand("scan", "List the frames of a split")
	scanSplit := scanCmd.String("s", "split", &argparse.Options{Help: "Split directory (eg data/train)", Required: true})

	labelsCmd := parser.NewCommand("labels", "Build or load the labels of a split, and print counts")
	labelsSplit := labelsCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	labelsRebuild := labelsCmd.Flag("", "rebuild", &argparse.Options{Help: "Ignore the cache and rebuild"})

	cocoCmd := parser.NewCommand("coco", "Export labels in COCO format")
	cocoSplit := cocoCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	cocoOut := cocoCmd.String("o", "output", &argparse.Options{Help: "Output JSON file (local path or gs://bucket/object)", Required: true})

	yoloCmd := parser.NewCommand("yolo", "Export labels as YOLO text files")
	yoloSplit := yoloCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	yoloOut := yoloCmd.String("o", "output", &argparse.Options{Help: "Output directory", Required: true})

	dbCmd := parser.NewCommand("db", "Import labels into an SQLite database")
	dbSplit := dbCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	dbOut := dbCmd.String("o", "output", &argparse.Options{Help: "SQLite database file", Required: true})
	dbClass := dbCmd.Int("", "class", &argparse.Options{Help: "Also list the frames that contain this class ID", Default: -1})

	visCmd := parser.NewCommand("vis", "Draw the boxes of one frame, for a visual check")
	visSplit := visCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	visIndex := visCmd.Int("i", "index", &argparse.Options{Help: "Label index (wraps around)", Default: 0})
	visOut := visCmd.String("o", "output", &argparse.Options{Help: "Output image (default is next to the frame)"})

	statsCmd := parser.NewCommand("stats", "Print label statistics, and find likely duplicate boxes")
	statsSplit := statsCmd.String("s", "split", &argparse.Options{Help: "Split directory", Required: true})
	statsIoU := statsCmd.Float("", "iou", &argparse.Options{Help: "Minimum IoU for two boxes of the same class to be reported as duplicates", Default: 0.9})

	err = parser.Parse(os.Args)
	if err != nil {
		logger.Errorf(parser.Usage(err))
		os.Exit(1)
	}

	a, err := newApp(logger, *configFile, *classFile)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	switch {
	case scanCmd.Happened():
		err = a.scan(*scanSplit)
	case labelsCmd.Happened():
		err = a.labels(*labelsSplit, *labelsRebuild)
	case cocoCmd.Happened():
		err = a.coco(*cocoSplit, *cocoOut)
	case yoloCmd.Happened():
		err = a.yolo(*yoloSplit, *yoloOut)
	case dbCmd.Happened():
		err = a.db(*dbSplit, *dbOut, *dbClass)
	case visCmd.Happened():
		err = a.vis(*visSplit, *visIndex, *visOut)
	case statsCmd.Happened():
		err = a.stats(*statsSplit, float32(*statsIoU))
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func newApp(log logs.Log, configFile, classFile string) (*app, error) {
	cfg, err := config.Load(log, configFile)
	if err != nil {
		return nil, err
	}
	classes, err := cfg.LoadClasses(log, classFile)
	if err != nil {
		return nil, fmt.Errorf("Failed to load classes: %w", err)
	}
	return &app{
		log:     log,
		cfg:     cfg,
		classes: classes,
	}, nil
}

func (a *app) open(splitDir string, rebuild bool) (*dataset.Dataset, error) {
	return dataset.Open(a.log, splitDir, a.classes, dataset.Options{
		CacheDir:     a.cfg.CacheDir,
		ForceRebuild: rebuild,
	})
}

func (a *app) load(splitDir string, rebuild bool) (*dataset.LoadResult, error) {
	ds, err := a.open(splitDir, rebuild)
	if err != nil {
		return nil, err
	}
	return ds.Load()
}
