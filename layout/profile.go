package layout

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ByLCY/badges/dsl"
)

// LoadProfile 读取并解析版式文件，将其中的设置覆盖到 cfg。
func LoadProfile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("无法打开版式文件 %s: %w", path, err)
	}
	defer file.Close()

	p, err := dsl.Parse(path, file)
	if err != nil {
		return fmt.Errorf("解析版式文件失败: %w", err)
	}
	return ApplyProfile(cfg, p)
}

// ApplyProfile 将版式 AST 中的设置覆盖到 cfg，未出现的键保持原值。
func ApplyProfile(cfg *Config, p *dsl.Profile) error {
	if cfg == nil || p == nil {
		return nil
	}
	for _, section := range p.Sections {
		var err error
		switch strings.ToLower(section.Kind) {
		case "page":
			err = applyEntries(section, func(key string, v *dsl.Value) error { return applyPage(cfg, key, v) })
		case "text":
			err = applyEntries(section, func(key string, v *dsl.Value) error { return applyText(cfg, key, v) })
		case "block":
			style, ok := blockByLabel(cfg, section.Label)
			if !ok {
				return fmt.Errorf("%s: 未知的文本块 %q（可选 name/title/company）", section.Pos, section.Label)
			}
			err = applyEntries(section, func(key string, v *dsl.Value) error { return applyBlock(style, key, v) })
		case "qr":
			err = applyEntries(section, func(key string, v *dsl.Value) error { return applyQR(&cfg.QR, key, v) })
		case "columns":
			err = applyEntries(section, func(key string, v *dsl.Value) error { return applyColumn(&cfg.Columns, key, v) })
		default:
			return fmt.Errorf("%s: 未知的段落 %q", section.Pos, section.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applyEntries(section *dsl.Section, apply func(key string, v *dsl.Value) error) error {
	for _, entry := range section.Entries {
		if err := apply(strings.ToLower(entry.Key), entry.Value); err != nil {
			return fmt.Errorf("%s: %s: %w", entry.Pos, entry.Key, err)
		}
	}
	return nil
}

func blockByLabel(cfg *Config, label string) (*BlockStyle, bool) {
	switch strings.ToLower(label) {
	case RoleName:
		return &cfg.Name, true
	case RoleTitle:
		return &cfg.Title, true
	case RoleCompany:
		return &cfg.Company, true
	default:
		return nil, false
	}
}

func applyPage(cfg *Config, key string, v *dsl.Value) error {
	switch key {
	case "width":
		return setMM(&cfg.PageWidth, v)
	case "height":
		return setMM(&cfg.PageHeight, v)
	case "size":
		size, ok := pagePresets[strings.ToUpper(v.Text())]
		if !ok {
			return fmt.Errorf("暂不支持的纸张尺寸：%s", v.Text())
		}
		cfg.PageWidth, cfg.PageHeight = size[0], size[1]
		return nil
	case "dpi":
		return setFloat(&cfg.DPI, v)
	case "background":
		cfg.Background = v.Text()
		return nil
	}
	return errUnknownKey
}

var pagePresets = map[string][2]float64{
	"A4": {210, 297},
	"A5": {148, 210},
	"A6": {105, 148},
}

func applyText(cfg *Config, key string, v *dsl.Value) error {
	switch key {
	case "x":
		return setMM(&cfg.TextX, v)
	case "max-width":
		return setMM(&cfg.MaxTextWidth, v)
	case "start":
		return setMM(&cfg.StartY, v)
	case "line-spacing":
		return setMM(&cfg.LineSpacing, v)
	case "line-padding":
		return setMM(&cfg.LinePadding, v)
	case "fit":
		cfg.Fit = FitPolicy(strings.ToLower(v.Text()))
		return nil
	case "word-threshold":
		return setInt(&cfg.WordThreshold, v)
	case "ref-char":
		cfg.RefChar = v.Text()
		return nil
	case "title-case":
		return setBool(&cfg.TitleCaseName, v)
	case "default-name":
		cfg.DefaultName = v.Text()
		return nil
	}
	return errUnknownKey
}

func applyBlock(style *BlockStyle, key string, v *dsl.Value) error {
	switch key {
	case "font":
		style.Font = parseFontValue(v.Text())
		return nil
	case "size":
		// small-size 可以为 0（表示不缩小），size 不行
		l, ok := ParseRawLengthStr(v.Text())
		if ok && (l.IsZero() || l.Value < 0) {
			return fmt.Errorf("字号必须大于 0，实际 %s", l)
		}
		return setPT(&style.Size, v)
	case "small-size":
		return setPT(&style.SmallSize, v)
	case "color":
		c, err := parseColor(v.Text())
		if err != nil {
			return err
		}
		style.Color = c
		return nil
	case "gap":
		return setMM(&style.Gap, v)
	case "wrap":
		return setBool(&style.Wrap, v)
	case "max-lines":
		return setInt(&style.MaxLines, v)
	}
	return errUnknownKey
}

func applyQR(q *QRConfig, key string, v *dsl.Value) error {
	switch key {
	case "size":
		return setMM(&q.Size, v)
	case "offset-x":
		return setMM(&q.OffsetX, v)
	case "bottom":
		return setMM(&q.Bottom, v)
	case "data":
		q.Data = v.Text()
		return nil
	}
	return errUnknownKey
}

func applyColumn(c *Columns, key string, v *dsl.Value) error {
	switch key {
	case "name":
		c.Name = v.Text()
	case "title":
		c.Title = v.Text()
	case "company":
		c.Company = v.Text()
	case "qr":
		c.QR = v.Text()
	default:
		return errUnknownKey
	}
	return nil
}

var errUnknownKey = errors.New("未知的设置项")

// parseFontValue 支持 regular/bold 两个内置字体名，其余按 TTF 文件路径处理。
func parseFontValue(value string) FontResource {
	switch strings.ToLower(value) {
	case "regular", "builtin:regular":
		return FontRegular
	case "bold", "builtin:bold":
		return FontBold
	}
	return FontResource{Name: value, Src: value}
}

func setMM(dst *float64, v *dsl.Value) error {
	l, ok := ParseRawLengthStr(v.Text())
	if !ok {
		return fmt.Errorf("无效的长度 %q", v.Text())
	}
	*dst = l.ToMM()
	return nil
}

func setPT(dst *float64, v *dsl.Value) error {
	l, ok := ParseRawLengthStr(v.Text())
	if !ok {
		return fmt.Errorf("无效的字号 %q", v.Text())
	}
	*dst = l.ToPT()
	return nil
}

func setFloat(dst *float64, v *dsl.Value) error {
	f, err := strconv.ParseFloat(v.Text(), 64)
	if err != nil {
		return fmt.Errorf("无效的数值 %q", v.Text())
	}
	*dst = f
	return nil
}

func setInt(dst *int, v *dsl.Value) error {
	i, err := strconv.Atoi(v.Text())
	if err != nil {
		return fmt.Errorf("无效的整数 %q", v.Text())
	}
	*dst = i
	return nil
}

func setBool(dst *bool, v *dsl.Value) error {
	b, err := strconv.ParseBool(v.Text())
	if err != nil {
		return fmt.Errorf("无效的布尔值 %q", v.Text())
	}
	*dst = b
	return nil
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("无效的颜色值: %s", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效的颜色值: %s", value)
	}
	return Color{R: int((v >> 16) & 0xff), G: int((v >> 8) & 0xff), B: int(v & 0xff)}, nil
}
