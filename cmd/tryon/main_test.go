package main

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/tryon/config"
	"go.viam.com/tryon/logging"
	"go.viam.com/tryon/rimage"
	"go.viam.com/tryon/vision/pose"
)

func writeFixtures(t *testing.T, dir, extraConfig string) (configPath, landmarksPath string) {
	t.Helper()

	texture := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for i := range texture.Pix {
		texture.Pix[i] = 255
	}
	test.That(t, rimage.WriteImageToFile(filepath.Join(dir, "shirt.png"), texture), test.ShouldBeNil)

	configPath = filepath.Join(dir, "tryon.json5")
	cfg := `{
		// relative to this file
		texture_path: "shirt.png",
		scale: 1,
	` + extraConfig + `}`
	test.That(t, os.WriteFile(configPath, []byte(cfg), 0o600), test.ShouldBeNil)

	body := pose.Body{
		LeftShoulder:  r2.Point{X: 50, Y: 50},
		RightShoulder: r2.Point{X: 150, Y: 50},
		RightHip:      r2.Point{X: 150, Y: 150},
		LeftHip:       r2.Point{X: 50, Y: 150},
	}
	weak := body.Landmarks()
	weak[0].Confidence = 0.2

	landmarksPath = filepath.Join(dir, "frames.jsonl")
	f, err := os.Create(landmarksPath)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()
	test.That(t, pose.WriteReplay(f, []pose.ReplayFrame{
		{Width: 200, Height: 200, Landmarks: body.Landmarks()},
		{Width: 200, Height: 200, Landmarks: weak},
	}), test.ShouldBeNil)
	return configPath, landmarksPath
}

func alphaAt(t *testing.T, path string, x, y int) uint8 {
	t.Helper()
	img, err := rimage.ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 200, 200))
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA).A
}

func TestMainRendersReplay(t *testing.T) {
	dir := t.TempDir()
	configPath, landmarksPath := writeFixtures(t, dir, "")
	outDir := filepath.Join(dir, "out")
	plotPath := filepath.Join(dir, "latency.png")

	err := mainWithArgs(context.Background(), []string{
		"tryon",
		"-config", configPath,
		"-landmarks", landmarksPath,
		"-out", outDir,
		"-stats_plot", plotPath,
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	first := filepath.Join(outDir, "frame_0000.png")
	test.That(t, alphaAt(t, first, 100, 100), test.ShouldEqual, uint8(255))
	test.That(t, alphaAt(t, first, 10, 10), test.ShouldEqual, uint8(0))

	// the second frame has an unconfident shoulder so its overlay is cleared
	second := filepath.Join(outDir, "frame_0001.png")
	test.That(t, alphaAt(t, second, 100, 100), test.ShouldEqual, uint8(0))

	_, err = os.Stat(plotPath)
	test.That(t, err, test.ShouldBeNil)
}

func TestMainWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "tryon.log")
	configPath, landmarksPath := writeFixtures(t, dir, `log_file: {path: "`+logPath+`"},`)

	err := mainWithArgs(context.Background(), []string{
		"tryon",
		"-config", configPath,
		"-landmarks", landmarksPath,
		"-out", filepath.Join(dir, "out"),
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	contents, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "done")
}

func TestSetupLoggingReturnsFileAppender(t *testing.T) {
	logger := logging.NewTestLogger(t)

	appender, err := setupLogging(&config.Config{LogLevel: "info"}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, appender, test.ShouldBeNil)

	logPath := filepath.Join(t.TempDir(), "tryon.log")
	cfg := &config.Config{LogLevel: "warn", LogFile: &config.LogConfig{Path: logPath, MaxSizeMB: 1, MaxBackups: 1}}
	appender, err = setupLogging(cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, appender, test.ShouldNotBeNil)
	test.That(t, logger.GetLevel(), test.ShouldEqual, logging.WARN)

	logger.Warn("closing soon")
	test.That(t, appender.Close(), test.ShouldBeNil)
	contents, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, "closing soon")
}

func TestMainArguments(t *testing.T) {
	logger := logging.NewTestLogger(t)

	err := mainWithArgs(context.Background(), []string{"tryon", "-schema"}, logger)
	test.That(t, err, test.ShouldBeNil)

	err = mainWithArgs(context.Background(), []string{"tryon", "-out", t.TempDir()}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "required")

	dir := t.TempDir()
	_, landmarksPath := writeFixtures(t, dir, "")
	err = mainWithArgs(context.Background(), []string{
		"tryon",
		"-config", filepath.Join(dir, "missing.json"),
		"-landmarks", landmarksPath,
		"-out", dir,
	}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReplayFrameDisplaySize(t *testing.T) {
	upright := newReplayFrame(pose.ReplayFrame{Width: 640, Height: 480, Rotation: 90}, image.Point{})
	test.That(t, upright.DisplaySize(), test.ShouldResemble, image.Point{X: 480, Y: 640})
	test.That(t, upright.Rotation(), test.ShouldEqual, 90)

	img, err := upright.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Size(), test.ShouldResemble, image.Point{X: 640, Y: 480})

	explicit := newReplayFrame(pose.ReplayFrame{Width: 640, Height: 480}, image.Point{X: 100, Y: 50})
	test.That(t, explicit.DisplaySize(), test.ShouldResemble, image.Point{X: 100, Y: 50})
}
