package layout

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ByLCY/badges/qr"
)

// Fields 是一条记录中参与排版的字段。QR 为空表示不绘制二维码。
type Fields struct {
	Name    string
	Title   string
	Company string
	QRData  string
	QR      *qr.Code
}

// Plan 根据配置为一条记录计算胸牌布局。index 为从 1 开始的记录序号。
func Plan(cfg Config, index int, in Fields, ts Typesetter) (*Badge, error) {
	if ts == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}

	name := DisplayName(cfg, in.Name)
	badge := &Badge{
		Index:      index,
		Name:       name,
		Width:      cfg.PageWidth,
		Height:     cfg.PageHeight,
		Background: cfg.Background,
	}

	p := &planner{cfg: cfg, ts: ts, cursor: cfg.StartY}
	blocks := []struct {
		role    string
		content string
		style   BlockStyle
	}{
		{RoleName, name, cfg.Name},
		{RoleTitle, strings.TrimSpace(in.Title), cfg.Title},
		{RoleCompany, strings.TrimSpace(in.Company), cfg.Company},
	}
	for _, b := range blocks {
		box, err := p.block(b.role, b.content, b.style)
		if err != nil {
			return nil, fmt.Errorf("排版 %s 失败: %w", b.role, err)
		}
		badge.Texts = append(badge.Texts, box)
	}

	if in.QR != nil {
		size := cfg.QR.Size
		badge.QR = &QRBox{
			X:    (cfg.PageWidth-size)/2 + cfg.QR.OffsetX,
			Y:    cfg.PageHeight - cfg.QR.Bottom - size,
			Size: size,
			Data: in.QRData,
			Code: in.QR,
		}
	}
	return badge, nil
}

// DisplayName 返回用于显示的姓名：空白时使用默认值，按配置做词首字母大写。
func DisplayName(cfg Config, raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = cfg.DefaultName
	}
	if cfg.TitleCaseName {
		name = titleCase(name)
	}
	return name
}

// titleCase 将每个词首字母大写；撇号后的字母也视为词首，"o'brien" 得到 "O'Brien"。
func titleCase(s string) string {
	caser := cases.Title(language.Und)
	parts := strings.Split(s, "'")
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, "'")
}

// planner 在一张胸牌内自上而下推进纵向游标。
type planner struct {
	cfg    Config
	ts     Typesetter
	cursor float64
}

func (p *planner) block(role, content string, style BlockStyle) (TextBox, error) {
	box := TextBox{
		Role:     role,
		Content:  content,
		Font:     style.Font,
		FontSize: style.Size,
		Color:    style.Color,
	}

	lines, err := p.breakLines(&box, style)
	if err != nil {
		return box, err
	}
	if style.MaxLines > 0 && len(lines) > style.MaxLines {
		box.Dropped = len(lines) - style.MaxLines
		lines = lines[:style.MaxLines]
	}
	if err := p.place(&box, style, lines); err != nil {
		return box, err
	}
	return box, nil
}

// breakLines 按 fit 策略决定字号并换行，可能修改 box.FontSize 与 box.Shrunk。
func (p *planner) breakLines(box *TextBox, style BlockStyle) ([]string, error) {
	content := box.Content
	if content == "" {
		return nil, nil
	}
	if !style.Wrap {
		return []string{content}, nil
	}

	switch p.cfg.Fit {
	case FitWordCount:
		if wordCount(content) > p.cfg.WordThreshold && style.small() != style.Size {
			box.FontSize = style.small()
			box.Shrunk = true
		}
		ref, err := p.ts.TextWidth(p.cfg.RefChar, box.Font, box.FontSize)
		if err != nil {
			return nil, err
		}
		maxChars := 1
		if ref > 0 {
			maxChars = int(math.Floor(p.cfg.MaxTextWidth / ref))
		}
		return WrapByChars(content, maxChars), nil

	default:
		w, err := p.ts.TextWidth(content, box.Font, box.FontSize)
		if err != nil {
			return nil, err
		}
		if w <= p.cfg.MaxTextWidth {
			return []string{content}, nil
		}
		lines, err := p.wrapMeasured(content, box.Font, box.FontSize)
		if err != nil {
			return nil, err
		}
		if style.MaxLines > 0 && len(lines) > style.MaxLines && style.small() != style.Size {
			box.FontSize = style.small()
			box.Shrunk = true
			return p.wrapMeasured(content, box.Font, box.FontSize)
		}
		return lines, nil
	}
}

func (p *planner) wrapMeasured(content string, font FontResource, size float64) ([]string, error) {
	return Wrap(content, p.cfg.MaxTextWidth, func(s string) (float64, error) {
		return p.ts.TextWidth(s, font, size)
	})
}

// place 计算每行的基线并推进游标。
// 固定行距时游标是基线位置；按度量排布时游标是下一行的顶部。
func (p *planner) place(box *TextBox, style BlockStyle, lines []string) error {
	pos := p.cursor + style.Gap
	if len(lines) == 0 {
		p.cursor = pos
		return nil
	}

	var metrics Metrics
	fixed := p.cfg.LineSpacing > 0
	if !fixed {
		m, err := p.ts.FontMetrics(box.Font, box.FontSize)
		if err != nil {
			return err
		}
		metrics = m
	}

	box.Lines = make([]TextLine, 0, len(lines))
	for i, content := range lines {
		width, err := p.ts.TextWidth(content, box.Font, box.FontSize)
		if err != nil {
			return err
		}
		line := TextLine{Content: content, X: p.cfg.TextX, Width: width}
		if fixed {
			line.Baseline = pos + float64(i)*p.cfg.LineSpacing
			p.cursor = line.Baseline
		} else {
			line.Baseline = pos + metrics.Ascent
			pos += metrics.Height() + p.cfg.LinePadding
			p.cursor = pos
		}
		box.Lines = append(box.Lines, line)
	}
	return nil
}
