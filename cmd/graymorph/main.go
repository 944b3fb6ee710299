package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"graymorph/internal/models"
	"graymorph/pkg/config"
	"graymorph/pkg/imageio"
	"graymorph/pkg/metrics"
	"graymorph/pkg/morphology"
	"graymorph/pkg/raster"
	"graymorph/pkg/strel"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "graymorph.yaml", "YAML configuration file (defaults are used when missing)")
	inputPath := flag.String("input", "", "Input image, or a directory of slices forming a 3D stack")
	outputPath := flag.String("output", "", "Output image, or a directory for the slices of a 3D result")
	operation := flag.String("op", "", "Operator: erode, dilate, open, close, tophat, blacktophat")
	shape := flag.String("shape", "", "Structuring element: square, disk, diamond, rectangle, periodicline")
	radius := flag.Int("radius", 0, "Radius of square, disk and diamond elements")
	boundary := flag.String("boundary", "", "Boundary policy: sentinel, nearest, mirror")
	optimize := flag.Bool("optimize", true, "Decompose the structuring element when cheaper")
	full := flag.Bool("full", false, "Keep the padded output of the full variant")
	binary := flag.Bool("binary", false, "Threshold the input into a binary mask first")
	threshold := flag.Int("threshold", 127, "Binary threshold level (0-255)")
	numCores := flag.Int("cores", 0, "Goroutines per stage (default from config: all CPUs)")
	reportPath := flag.String("report", "", "Write a YAML run report to this path")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := initLogger(*debugMode)

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			logger.WithError(err).Fatal("Failed to write configuration")
		}
		logger.WithField("path", *configPath).Info("Default configuration written")
		return
	}

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Flags given on the command line win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "op":
			cfg.Operation = *operation
		case "shape":
			cfg.Element.Shape = *shape
		case "radius":
			cfg.Element.Radius = *radius
		case "boundary":
			cfg.Processing.Boundary = *boundary
		case "optimize":
			cfg.Element.Optimize = *optimize
		case "full":
			cfg.Processing.Full = *full
		case "binary":
			cfg.Processing.Binary = *binary
		case "threshold":
			cfg.Processing.Threshold = *threshold
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "report":
			cfg.Output.Report = *reportPath
		}
	})
	if cfg.Output.Verbose && !*debugMode {
		logger.SetLevel(logrus.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	report, err := run(cfg, *inputPath, *outputPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Morphological processing failed")
	}

	printSummary(report)

	if cfg.Output.Report != "" {
		if err := report.Save(cfg.Output.Report); err != nil {
			logger.WithError(err).Warn("Failed to write run report")
		} else {
			logger.WithField("path", cfg.Output.Report).Info("Run report written")
		}
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

// run loads the input, picks the element type matching it and hands off
// to process.
func run(cfg *config.Config, input, output string, logger *logrus.Logger) (*models.Report, error) {
	report := &models.Report{
		Input:     input,
		Output:    output,
		Operation: cfg.Operation,
		Full:      cfg.Processing.Full,
		Boundary:  cfg.Processing.Boundary,
		Workers:   cfg.Processing.NumCores,
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		vol, err := imageio.LoadStack(input)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"slices": vol.Extent(2),
			"width":  vol.Extent(0),
			"height": vol.Extent(1),
		}).Info("Loaded 3D stack")

		if cfg.Processing.Binary {
			level := uint16(cfg.Processing.Threshold) * 257
			mask := raster.Threshold(raster.Uint16, vol, level, true)
			out, err := process(cfg, raster.Bool, mask, report, logger)
			if err != nil {
				return nil, err
			}
			if !cfg.Processing.Full {
				report.Metrics = compare(imageio.NormalizedBinary(mask), imageio.NormalizedBinary(out), logger)
			}
			return report, saveStack(raster.Convert(out, func(on bool) uint16 {
				if on {
					return 0xffff
				}
				return 0
			}), output)
		}

		out, err := process(cfg, raster.Uint16, vol, report, logger)
		if err != nil {
			return nil, err
		}
		if !cfg.Processing.Full {
			report.Metrics = compare(imageio.Normalized(vol, 0xffff), imageio.Normalized(out, 0xffff), logger)
		}
		return report, saveStack(out, output)
	}

	img, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Info("Loaded image")

	switch {
	case cfg.Processing.Binary:
		gray := imageio.GrayRaster8(img)
		mask := raster.Threshold(raster.Uint8, gray, uint8(cfg.Processing.Threshold), true)
		out, err := process(cfg, raster.Bool, mask, report, logger)
		if err != nil {
			return nil, err
		}
		if !cfg.Processing.Full {
			report.Metrics = compare(imageio.NormalizedBinary(mask), imageio.NormalizedBinary(out), logger)
		}
		result, err := imageio.BinaryToImage(out)
		if err != nil {
			return nil, err
		}
		return report, imageio.Save(output, result)

	case is16Bit(img):
		src := imageio.GrayRaster16(img)
		out, err := process(cfg, raster.Uint16, src, report, logger)
		if err != nil {
			return nil, err
		}
		if !cfg.Processing.Full {
			report.Metrics = compare(imageio.Normalized(src, 0xffff), imageio.Normalized(out, 0xffff), logger)
		}
		result, err := imageio.ToImage16(out)
		if err != nil {
			return nil, err
		}
		return report, imageio.Save(output, result)

	default:
		src := imageio.GrayRaster8(img)
		out, err := process(cfg, raster.Uint8, src, report, logger)
		if err != nil {
			return nil, err
		}
		if !cfg.Processing.Full {
			report.Metrics = compare(imageio.Normalized(src, 0xff), imageio.Normalized(out, 0xff), logger)
		}
		result, err := imageio.ToImage8(out)
		if err != nil {
			return nil, err
		}
		return report, imageio.Save(output, result)
	}
}

func is16Bit(img image.Image) bool {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return true
	default:
		return false
	}
}

// process builds the engine and structuring element from cfg and runs the
// configured operator over src.
func process[T any](cfg *config.Config, elem raster.ElementType[T], src *raster.Raster[T], report *models.Report, logger *logrus.Logger) (*raster.Raster[T], error) {
	op, err := cfg.OperatorValue()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.BoundaryPolicy()
	if err != nil {
		return nil, err
	}
	shape, err := cfg.Shape(src.Dims())
	if err != nil {
		return nil, err
	}
	if err := shape.CheckDims(src.Dims()); err != nil {
		return nil, err
	}

	decomposition, err := strel.Decompose(shape, cfg.Element.Optimize)
	if err != nil {
		return nil, err
	}
	direct, err := shape.Element()
	if err != nil {
		return nil, err
	}

	engine, err := morphology.New(elem,
		morphology.WithBoundary(policy),
		morphology.WithWorkers(cfg.Processing.NumCores),
		morphology.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	report.SampleType = elem.Name()
	report.InputExtents = src.Extents()
	report.Element = models.ElementReport{
		Shape:      shape.String(),
		Optimized:  decomposition.Len() > 1,
		Stages:     decomposition.Descriptors(),
		Cost:       decomposition.Cost(),
		DirectCost: direct.Len(),
	}

	start := time.Now()
	var out *raster.Raster[T]
	if cfg.Processing.Full {
		out, err = engine.ApplyFull(op, src, decomposition)
	} else {
		out, err = engine.Apply(op, src, decomposition)
	}
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	report.OutputExtents = out.Extents()

	logger.WithFields(logrus.Fields{
		"operation": op.String(),
		"output":    out.String(),
		"duration":  report.Duration.String(),
	}).Info("Morphological operation completed")

	return out, nil
}

func compare(before, after []float64, logger *logrus.Logger) *metrics.Comparison {
	c, err := metrics.Compare(before, after)
	if err != nil {
		logger.WithError(err).Warn("Failed to compute metrics")
		return nil
	}
	return &c
}

// saveStack writes a 3D result as z slices into dir.
func saveStack(vol *raster.Raster[uint16], dir string) error {
	if ext := filepath.Ext(dir); ext != "" {
		dir = strings.TrimSuffix(dir, ext)
	}
	return imageio.SaveSliceSequence(vol, "z", dir)
}

func printSummary(r *models.Report) {
	fmt.Println("================================")
	fmt.Printf("%s with %s\n", strings.ToUpper(r.Operation), r.Element.Shape)
	fmt.Println("================================")

	if r.Element.Optimized {
		fmt.Printf("Optimized strel is made of %d elements:\n", len(r.Element.Stages))
	} else {
		fmt.Printf("Non-optimized strel is made of %d elements:\n", len(r.Element.Stages))
	}
	for _, s := range r.Element.Stages {
		fmt.Printf(" - %s\n", s)
	}
	fmt.Printf("Probes per sample: %d (direct: %d, speedup %.2fx)\n",
		r.Element.Cost, r.Element.DirectCost, r.Element.Speedup())

	fmt.Printf("\nSize of the source image: %v\n", r.InputExtents)
	fmt.Printf("Size of the result image: %v\n", r.OutputExtents)
	fmt.Printf("Sample type: %s, boundary: %s, workers: %d\n", r.SampleType, r.Boundary, r.Workers)
	fmt.Printf("Processing time: %.3f seconds\n", r.Duration.Seconds())

	if m := r.Metrics; m != nil {
		fmt.Printf("\nMetrics:\n")
		fmt.Printf("Mean intensity: %.4f -> %.4f\n", m.MeanBefore, m.MeanAfter)
		fmt.Printf("Std deviation: %.4f -> %.4f\n", m.StdDevBefore, m.StdDevAfter)
		fmt.Printf("Root Mean Square Error (RMSE): %.6f\n", m.RMSE)
		fmt.Printf("Structural Similarity Index (SSIM): %.3f\n", m.SSIM)
		fmt.Printf("Entropy difference: %.3f bits\n", m.EntropyDiff)
		fmt.Printf("Changed samples: %.2f%%\n", m.Changed*100)
	}
	fmt.Printf("\nOutput saved to: %s\n", r.Output)
}
