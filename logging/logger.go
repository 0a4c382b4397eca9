// Package logging 按配置构建 logrus 日志器。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup 创建写到 stderr 的日志器。level 无法识别时退回 info；format 为 "json" 时输出 JSON。
func Setup(level, format string) *logrus.Logger {
	return New(os.Stderr, level, format)
}

// New 与 Setup 相同，但可以指定输出位置。
func New(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}
	return logger
}
