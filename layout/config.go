package layout

import (
	"errors"
	"fmt"
)

// FitPolicy 决定文本块超长时的处理方式。
type FitPolicy string

const (
	// FitShrink 先按实际宽度换行，行数超过上限时换小号字重新换行，并截断到上限。
	FitShrink FitPolicy = "shrink"
	// FitWordCount 词数超过阈值时直接换小号字，再按参考字符宽度估算每行字符数换行，不限行数。
	FitWordCount FitPolicy = "word-count"
)

// BlockStyle 描述一个文本块（姓名/职位/公司）的字体与排布参数。
type BlockStyle struct {
	Font      FontResource `json:"font"`
	Size      float64      `json:"size"`      // pt
	SmallSize float64      `json:"smallSize"` // pt，<=0 时与 Size 相同
	Color     Color        `json:"color"`
	Gap       float64      `json:"gap"` // 与上一个块结束位置的间距（mm）
	Wrap      bool         `json:"wrap"`
	MaxLines  int          `json:"maxLines"` // 0 表示不限
}

func (s BlockStyle) small() float64 {
	if s.SmallSize <= 0 {
		return s.Size
	}
	return s.SmallSize
}

// QRConfig 描述二维码的尺寸与位置（mm）。
type QRConfig struct {
	Size    float64 `json:"size"`
	OffsetX float64 `json:"offsetX"` // 相对水平居中位置的偏移
	Bottom  float64 `json:"bottom"`  // 二维码下边缘到页面底部的距离
	Data    string  `json:"data"`    // 负载模板，例如 "https://example.org/a/${QR Code}"；为空时直接使用字段值
}

// Columns 记录 CSV 中各字段对应的列名。
type Columns struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	QR      string `json:"qr"`
}

// Config 汇总胸牌画布的全部固定参数，布局与渲染都只从这里读取尺寸。
type Config struct {
	PageWidth  float64 `json:"pageWidth"`  // mm
	PageHeight float64 `json:"pageHeight"` // mm
	DPI        float64 `json:"dpi"`        // 位图输出与背景缩放使用
	Background string  `json:"background"`

	TextX        float64 `json:"textX"`
	MaxTextWidth float64 `json:"maxTextWidth"`
	// StartY 为第一个文本块的起点（mm，自页面顶部）。
	// LineSpacing > 0 时表示首行基线，否则表示首行顶部。
	StartY      float64 `json:"startY"`
	LineSpacing float64 `json:"lineSpacing"` // 固定行距（基线到基线）；0 时按字体度量计算
	LinePadding float64 `json:"linePadding"` // 按度量计算行距时追加的间隙

	Fit           FitPolicy `json:"fit"`
	WordThreshold int       `json:"wordThreshold"`
	// RefChar 为 word-count 策略下估算每行字符数使用的参考字符。
	// 这是近似值：换行位置与逐字测量的结果不同。
	RefChar       string `json:"refChar"`
	TitleCaseName bool   `json:"titleCaseName"`
	DefaultName   string `json:"defaultName"`

	Name    BlockStyle `json:"name"`
	Title   BlockStyle `json:"title"`
	Company BlockStyle `json:"company"`
	QR      QRConfig   `json:"qr"`
	Columns Columns    `json:"columns"`
}

// 内置字体。
var (
	FontRegular = FontResource{Name: "Regular", Src: "builtin:regular"}
	FontBold    = FontResource{Name: "Bold", Src: "builtin:bold", Style: "bold"}
)

// DefaultColumns 返回默认列名。
func DefaultColumns() Columns {
	return Columns{Name: "Name", Title: "Title", Company: "Company", QR: "QR Code"}
}

// DefaultConfig 返回 PDF 版式：A4 整页，姓名最多两行，超出时从 30pt 缩到 24pt。
func DefaultConfig() Config {
	return Config{
		PageWidth:    210,
		PageHeight:   297,
		DPI:          300,
		Background:   "public/badge.png",
		TextX:        38,
		MaxTextWidth: 115,
		StartY:       297 - 190,
		LineSpacing:  12,
		Fit:          FitShrink,
		DefaultName:  "Unknown",
		Name: BlockStyle{
			Font: FontBold, Size: 30, SmallSize: 24,
			Color: Color{R: 26, G: 26, B: 26}, Wrap: true, MaxLines: 2,
		},
		Title: BlockStyle{
			Font: FontBold, Size: 20,
			Color: Color{R: 51, G: 51, B: 51}, Gap: 15,
		},
		Company: BlockStyle{
			Font: FontRegular, Size: 18,
			Color: Color{R: 85, G: 85, B: 85}, Gap: 10,
		},
		QR:      QRConfig{Size: 75, OffsetX: 18, Bottom: 60},
		Columns: DefaultColumns(),
	}
}

// RasterConfig 返回 JPEG 版式：与 PDF 相同的画布与二维码位置，
// 文本块按词数切换小号字，按度量计算行距，姓名按词首字母大写。
func RasterConfig() Config {
	cfg := DefaultConfig()
	cfg.StartY = 95
	cfg.LineSpacing = 0
	cfg.LinePadding = 2
	cfg.Fit = FitWordCount
	cfg.WordThreshold = 3
	cfg.RefChar = "A"
	cfg.TitleCaseName = true
	cfg.Name = BlockStyle{
		Font: FontBold, Size: 30, SmallSize: 22,
		Color: Color{R: 26, G: 26, B: 26}, Wrap: true,
	}
	cfg.Title = BlockStyle{
		Font: FontBold, Size: 20, SmallSize: 16,
		Color: Color{R: 51, G: 51, B: 51}, Gap: 6, Wrap: true,
	}
	cfg.Company = BlockStyle{
		Font: FontRegular, Size: 18, SmallSize: 14,
		Color: Color{R: 85, G: 85, B: 85}, Gap: 3, Wrap: true,
	}
	return cfg
}

// Validate 检查配置是否可用于排版。
func (c Config) Validate() error {
	var errs []error
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		errs = append(errs, fmt.Errorf("页面尺寸无效: %gx%gmm", c.PageWidth, c.PageHeight))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi 必须大于 0，实际 %g", c.DPI))
	}
	if c.MaxTextWidth <= 0 {
		errs = append(errs, fmt.Errorf("max-width 必须大于 0，实际 %g", c.MaxTextWidth))
	}
	switch c.Fit {
	case FitShrink:
	case FitWordCount:
		if c.RefChar == "" {
			errs = append(errs, errors.New("word-count 策略需要 ref-char"))
		}
		if c.WordThreshold < 0 {
			errs = append(errs, fmt.Errorf("word-threshold 不能为负数: %d", c.WordThreshold))
		}
	default:
		errs = append(errs, fmt.Errorf("未知的 fit 策略: %q", c.Fit))
	}
	for _, b := range []struct {
		role  string
		style BlockStyle
	}{{RoleName, c.Name}, {RoleTitle, c.Title}, {RoleCompany, c.Company}} {
		if b.style.Size <= 0 {
			errs = append(errs, fmt.Errorf("%s 字号必须大于 0", b.role))
		}
		if b.style.MaxLines < 0 {
			errs = append(errs, fmt.Errorf("%s max-lines 不能为负数", b.role))
		}
	}
	if c.QR.Size <= 0 {
		errs = append(errs, fmt.Errorf("二维码尺寸必须大于 0，实际 %g", c.QR.Size))
	}
	if c.Columns.Name == "" {
		errs = append(errs, errors.New("缺少姓名列名"))
	}
	return errors.Join(errs...)
}
