package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/badges/config"
	"github.com/ByLCY/badges/generator"
	"github.com/ByLCY/badges/layout"
	"github.com/ByLCY/badges/logging"
	"github.com/ByLCY/badges/record"
	"github.com/ByLCY/badges/renderer"
	canvasrenderer "github.com/ByLCY/badges/renderer/canvas"
	rasterrenderer "github.com/ByLCY/badges/renderer/raster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	input := flag.String("in", cfg.Input.CSV, "参会者 CSV 路径")
	mode := flag.String("mode", cfg.Output.Mode, "输出模式：pdf 或 jpeg")
	output := flag.String("out", cfg.Output.PDF, "PDF 输出路径（pdf 模式）")
	outDir := flag.String("out-dir", cfg.Output.Dir, "图片输出目录（jpeg 模式）")
	background := flag.String("background", cfg.Input.Background, "背景图路径，缺失时跳过背景")
	profile := flag.String("profile", cfg.Input.Profile, "版式配置文件（可选）")
	debug := flag.String("debug", cfg.Output.Debug, "布局调试 JSON 输出路径")
	logLevel := flag.String("log-level", cfg.Logging.Level, "日志级别：debug、info、warn、error")
	logFormat := flag.String("log-format", cfg.Logging.Format, "日志格式：text 或 json")
	flag.Parse()

	cfg.Input.CSV = *input
	cfg.Input.Background = *background
	cfg.Input.Profile = *profile
	cfg.Output.Mode = strings.ToLower(*mode)
	cfg.Output.PDF = *output
	cfg.Output.Dir = *outDir
	cfg.Output.Debug = *debug
	cfg.Logging.Level = *logLevel
	cfg.Logging.Format = *logFormat
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, logger); err != nil {
		// 运行期错误只记录日志，进程仍以 0 退出
		if errors.Is(err, record.ErrNotFound) {
			logger.WithField("path", cfg.Input.CSV).Error("file not found")
			return
		}
		logger.WithError(err).Error("生成胸牌失败")
	}
}

// run 准备版式与渲染器，然后交给 generator 逐条生成。
func run(cfg *config.Config, logger *logrus.Logger) error {
	lc, err := layoutConfig(cfg)
	if err != nil {
		return err
	}

	r := newRenderer(cfg, lc, logger)
	summary, err := generator.Run(generator.Options{
		CSVPath:   cfg.Input.CSV,
		Config:    lc,
		Renderer:  r,
		Logger:    logger,
		DebugPath: cfg.Output.Debug,
	})
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"run":    summary.RunID,
		"output": summary.Output,
	}).Infof("已生成 %d 张胸牌", summary.Generated)
	return nil
}

// layoutConfig 按模式选择基础版式，叠加背景与版式配置文件后校验。
func layoutConfig(cfg *config.Config) (layout.Config, error) {
	lc := layout.DefaultConfig()
	if cfg.Output.Mode == config.ModeJPEG {
		lc = layout.RasterConfig()
	}
	lc.Background = cfg.Input.Background
	if cfg.Input.Profile != "" {
		if err := layout.LoadProfile(&lc, cfg.Input.Profile); err != nil {
			return lc, err
		}
	}
	if err := lc.Validate(); err != nil {
		return lc, fmt.Errorf("版式配置无效: %w", err)
	}
	return lc, nil
}

func newRenderer(cfg *config.Config, lc layout.Config, logger *logrus.Logger) renderer.Renderer {
	baseDir := "."
	if cfg.Input.Profile != "" {
		baseDir = filepath.Dir(cfg.Input.Profile)
	}
	if cfg.Output.Mode == config.ModeJPEG {
		return rasterrenderer.NewRenderer(rasterrenderer.Options{
			OutputDir: cfg.Output.Dir,
			BaseDir:   baseDir,
			DPI:       lc.DPI,
			Quality:   cfg.Output.JPEGQuality,
			Logger:    logger,
		})
	}
	return canvasrenderer.NewRenderer(canvasrenderer.Options{
		OutputPath: cfg.Output.PDF,
		BaseDir:    baseDir,
		DPI:        lc.DPI,
		Meta:       canvasrenderer.Meta{Title: "Badges", Creator: "badges"},
		Logger:     logger,
	})
}
