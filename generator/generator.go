// Package generator 串联记录读取、二维码、排版与渲染，按输入顺序逐条生成胸牌。
package generator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/badges/binding"
	"github.com/ByLCY/badges/layout"
	"github.com/ByLCY/badges/qr"
	"github.com/ByLCY/badges/record"
	"github.com/ByLCY/badges/renderer"
)

// Options configures one generation run.
type Options struct {
	CSVPath   string
	Config    layout.Config
	Renderer  renderer.Renderer
	Logger    logrus.FieldLogger
	DebugPath string // 非空时把全部排版结果写成 JSON
}

// Summary 汇总一次运行的结果。
type Summary struct {
	RunID     string
	Generated int
	Output    string // PDF 路径或图片目录；没有产物时为空
}

// Run 读取 CSV 并为每一行生成一张胸牌。
// CSV 不存在时返回满足 errors.Is(err, record.ErrNotFound) 的错误，且不产生任何输出。
// 任一记录失败都会中止运行；此时渲染器不会被 Close，PDF 不会落盘。
func Run(opts Options) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	if opts.Renderer == nil {
		return summary, fmt.Errorf("renderer 不能为空")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("run", summary.RunID)

	src, err := record.Open(opts.CSVPath)
	if err != nil {
		return summary, err
	}
	defer src.Close()
	log.WithField("csv", opts.CSVPath).Info("开始生成胸牌")

	var planned []*layout.Badge
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}

		badge, err := buildBadge(opts.Config, rec, opts.Renderer)
		if err != nil {
			return summary, fmt.Errorf("第 %d 条记录: %w", rec.Row, err)
		}
		if err := opts.Renderer.RenderBadge(badge); err != nil {
			return summary, fmt.Errorf("第 %d 条记录渲染失败: %w", rec.Row, err)
		}
		summary.Generated++
		log.WithFields(logrus.Fields{"row": rec.Row, "name": badge.Name}).Debug("胸牌已生成")

		if opts.DebugPath != "" {
			planned = append(planned, badge)
		}
	}

	out, err := opts.Renderer.Close()
	if err != nil {
		return summary, err
	}
	summary.Output = out

	if opts.DebugPath != "" {
		if err := layout.WriteDebugJSON(planned, opts.DebugPath); err != nil {
			return summary, fmt.Errorf("写入调试 JSON 失败: %w", err)
		}
		log.WithField("path", opts.DebugPath).Info("已写入布局调试信息")
	}
	return summary, nil
}

// buildBadge 从一条记录取出字段，按需生成二维码，再交给排版引擎。
func buildBadge(cfg layout.Config, rec record.Record, ts layout.Typesetter) (*layout.Badge, error) {
	fields := layout.Fields{
		Name:    rec.Value(cfg.Columns.Name),
		Title:   rec.Value(cfg.Columns.Title),
		Company: rec.Value(cfg.Columns.Company),
	}
	if raw := rec.Value(cfg.Columns.QR); strings.TrimSpace(raw) != "" {
		data := raw
		if cfg.QR.Data != "" {
			data = binding.Interpolate(cfg.QR.Data, rec.Get)
		}
		code, err := qr.Encode(data)
		if err != nil {
			return nil, err
		}
		fields.QRData = data
		fields.QR = code
	}
	return layout.Plan(cfg, rec.Row, fields, ts)
}
