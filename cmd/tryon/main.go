// Package main renders recorded landmark frames through the try-on pipeline and writes every
// overlay to a PNG.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/tryon/config"
	"go.viam.com/tryon/logging"
	"go.viam.com/tryon/rimage"
	"go.viam.com/tryon/services/tryon"
	"go.viam.com/tryon/vision/pose"
)

var logger = logging.NewLogger("tryon")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigPath string `flag:"config,usage=path to the config file"`
	Landmarks  string `flag:"landmarks,usage=recorded frames with one JSON object per line"`
	OutDir     string `flag:"out,usage=directory the overlays are written to"`
	Width      int    `flag:"width,usage=display width; defaults to the upright buffer width"`
	Height     int    `flag:"height,usage=display height; defaults to the upright buffer height"`
	StatsPlot  string `flag:"stats_plot,usage=optional PNG path for a latency histogram"`
	Schema     bool   `flag:"schema,usage=print the config JSON schema and exit"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) (err error) {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	if argsParsed.Schema {
		out, err := config.SchemaJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(out))
		return err
	}

	if argsParsed.ConfigPath == "" || argsParsed.Landmarks == "" || argsParsed.OutDir == "" {
		return errors.New("config, landmarks and out are required")
	}

	cfg, err := config.Read(argsParsed.ConfigPath)
	if err != nil {
		return err
	}
	fileAppender, err := setupLogging(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		utils.UncheckedError(logger.Sync())
		if fileAppender != nil {
			err = multierr.Combine(err, fileAppender.Close())
		}
	}()

	frames, err := pose.ReadReplayFile(argsParsed.Landmarks)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(argsParsed.OutDir, 0o750); err != nil {
		return err
	}

	latencies, err := render(ctx, cfg, frames, argsParsed, logger)
	if err != nil {
		return err
	}
	if argsParsed.StatsPlot != "" {
		return writeLatencyPlot(argsParsed.StatsPlot, latencies)
	}
	return nil
}

// setupLogging applies the configured level and returns the file appender it added, if any.
func setupLogging(cfg *config.Config, logger logging.Logger) (*logging.ConsoleAppender, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	if cfg.LogFile == nil {
		return nil, nil
	}
	appender := logging.NewFileAppender(cfg.LogFile.Path, cfg.LogFile.MaxSizeMB, cfg.LogFile.MaxBackups)
	logger.AddAppender(appender)
	return appender, nil
}

func render(
	ctx context.Context,
	cfg *config.Config,
	frames []pose.ReplayFrame,
	argsParsed Arguments,
	logger logging.Logger,
) (latencies []time.Duration, err error) {
	texture, err := rimage.ReadImageFromFile(cfg.TexturePath)
	if err != nil {
		return nil, err
	}
	texture = rimage.LimitSize(texture, cfg.MaxTextureSize)

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	engine, err := tryon.NewEngine(texture, params, logger.Sublogger("engine"))
	if err != nil {
		return nil, err
	}
	pipeline := tryon.NewPipeline(
		engine,
		pose.NewReplayExtractor(frames),
		logger.Sublogger("pipeline"),
		tryon.WithConfidenceThreshold(cfg.Threshold()),
		tryon.WithMapperFactory(tryon.ViewMapperFactory(cfg.Mirror)),
	)
	defer func() {
		err = multierr.Combine(err, pipeline.Close())
	}()

	for i, recorded := range frames {
		frame := newReplayFrame(recorded, image.Point{X: argsParsed.Width, Y: argsParsed.Height})
		accepted, err := pipeline.Submit(frame)
		if err != nil {
			return latencies, err
		}
		if !accepted {
			return latencies, errors.Errorf("frame %d was not admitted", i)
		}

		var result tryon.Result
		select {
		case <-ctx.Done():
			return latencies, ctx.Err()
		case result = <-pipeline.Results():
		}
		if result.Err != nil {
			if fatal := pipeline.Err(); fatal != nil {
				return latencies, fatal
			}
			logger.Warnw("frame failed", "frame", i, "error", result.Err)
			continue
		}
		latencies = append(latencies, result.Latency)
		if !result.Rendered {
			logger.Infow("no torso found", "frame", i)
		}

		path := filepath.Join(argsParsed.OutDir, fmt.Sprintf("frame_%04d.png", i))
		if err := rimage.WriteImageToFile(path, result.Raster); err != nil {
			return latencies, err
		}
	}

	stats := pipeline.Stats()
	logger.Infow("done",
		"frames", len(frames),
		"rendered", stats.Rendered,
		"failed", stats.Failed,
		"mean_latency", stats.MeanLatency,
		"p95_latency", stats.P95Latency,
	)
	return latencies, nil
}

// replayFrame stands in for a camera frame of a recording. Its image is blank.
type replayFrame struct {
	buffer   image.Rectangle
	rotation int
	display  image.Point
}

func newReplayFrame(recorded pose.ReplayFrame, display image.Point) *replayFrame {
	upright := recorded.Size()
	if r := ((recorded.Rotation % 360) + 360) % 360; r == 90 || r == 270 {
		upright = image.Point{X: upright.Y, Y: upright.X}
	}
	if display.X <= 0 {
		display.X = upright.X
	}
	if display.Y <= 0 {
		display.Y = upright.Y
	}
	return &replayFrame{
		buffer:   image.Rectangle{Max: recorded.Size()},
		rotation: recorded.Rotation,
		display:  display,
	}
}

func (f *replayFrame) Image() (image.Image, error) {
	return blankImage(f.buffer), nil
}

func (f *replayFrame) Rotation() int {
	return f.rotation
}

func (f *replayFrame) DisplaySize() image.Point {
	return f.display
}

func (f *replayFrame) Release() {}

// blankImage is a transparent image that only carries its bounds.
type blankImage image.Rectangle

func (b blankImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (b blankImage) Bounds() image.Rectangle {
	return image.Rectangle(b)
}

func (b blankImage) At(x, y int) color.Color {
	return color.Transparent
}
