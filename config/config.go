// Package config 从环境变量（以及可选的 .env 文件）读取运行参数。
package config

import (
	"fmt"
	"strings"
)

// 输出模式。
const (
	ModePDF  = "pdf"
	ModeJPEG = "jpeg"
)

// Config 汇总命令行运行所需的参数；命令行参数会覆盖这里的取值。
type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Logging LoggingConfig
}

// InputConfig 描述输入文件。
type InputConfig struct {
	CSV        string `env:"BADGE_CSV" default:"participants_2025-12-04.csv"`
	Background string `env:"BADGE_BACKGROUND" default:"public/badge.png"`
	Profile    string `env:"BADGE_PROFILE"`
}

// OutputConfig 描述输出位置与格式。
type OutputConfig struct {
	Mode        string `env:"BADGE_MODE" default:"pdf"`
	PDF         string `env:"BADGE_OUTPUT_PDF" default:"badges_single_page.pdf"`
	Dir         string `env:"BADGE_OUTPUT_DIR" default:"badges"`
	JPEGQuality int    `env:"BADGE_JPEG_QUALITY" default:"95"`
	Debug       string `env:"BADGE_DEBUG"`
}

// LoggingConfig 描述日志级别与格式。
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate 检查配置，一次性报告全部问题。
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Output.Mode) {
	case ModePDF:
		if c.Output.PDF == "" {
			errs = append(errs, "BADGE_OUTPUT_PDF 不能为空")
		}
	case ModeJPEG:
		if c.Output.Dir == "" {
			errs = append(errs, "BADGE_OUTPUT_DIR 不能为空")
		}
	default:
		errs = append(errs, fmt.Sprintf("BADGE_MODE (%q) 必须是 pdf 或 jpeg", c.Output.Mode))
	}
	if c.Input.CSV == "" {
		errs = append(errs, "BADGE_CSV 不能为空")
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		errs = append(errs, fmt.Sprintf("BADGE_JPEG_QUALITY (%d) 必须在 1-100 之间", c.Output.JPEGQuality))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) 必须是 debug、info、warn 或 error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) 必须是 text 或 json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置无效:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
