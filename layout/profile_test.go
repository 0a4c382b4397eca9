package layout

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/badges/dsl"
)

func applyOrFail(t *testing.T, cfg *Config, src string) {
	t.Helper()
	p, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析版式失败: %v", err)
	}
	if err := ApplyProfile(cfg, p); err != nil {
		t.Fatalf("应用版式失败: %v", err)
	}
}

func TestApplyProfileOverrides(t *testing.T) {
	cfg := DefaultConfig()
	applyOrFail(t, &cfg, `
badge Expo v2 {
  page { size: A6; dpi: 150; background: "assets/bg.jpg" }
  text {
    x: 10mm
    max-width: 8.5cm
    fit: word-count
    word-threshold: 2
    ref-char: "M"
    title-case: true
  }
  block title { font: regular; size: 14pt; small-size: 12; color: #abc; wrap: true; max-lines: 3 }
  qr { size: 1in; bottom: 20mm; data: "https://example.org/a/${QR Code}" }
  columns { name: "Full Name"; qr: "Ticket" }
}
`)
	if cfg.PageWidth != 105 || cfg.PageHeight != 148 || cfg.DPI != 150 {
		t.Fatalf("页面设置未生效: %gx%g @%g", cfg.PageWidth, cfg.PageHeight, cfg.DPI)
	}
	if cfg.Background != "assets/bg.jpg" || cfg.TextX != 10 || cfg.MaxTextWidth != 85 {
		t.Fatalf("文本区域设置未生效: %+v", cfg)
	}
	if cfg.Fit != FitWordCount || cfg.WordThreshold != 2 || cfg.RefChar != "M" || !cfg.TitleCaseName {
		t.Fatalf("fit 设置未生效: %+v", cfg)
	}
	if cfg.Title.Font != FontRegular || cfg.Title.Size != 14 || cfg.Title.SmallSize != 12 {
		t.Fatalf("职位字体设置未生效: %+v", cfg.Title)
	}
	if cfg.Title.Color != (Color{R: 0xaa, G: 0xbb, B: 0xcc}) || !cfg.Title.Wrap || cfg.Title.MaxLines != 3 {
		t.Fatalf("职位样式设置未生效: %+v", cfg.Title)
	}
	if math.Abs(cfg.QR.Size-25.4) > 1e-9 || cfg.QR.Bottom != 20 || cfg.QR.OffsetX != 18 {
		t.Fatalf("二维码设置未生效: %+v", cfg.QR)
	}
	if cfg.Columns.Name != "Full Name" || cfg.Columns.QR != "Ticket" || cfg.Columns.Title != "Title" {
		t.Fatalf("列名设置未生效: %+v", cfg.Columns)
	}
	// 未出现的块保持默认
	if cfg.Name.Size != 30 || cfg.Name.MaxLines != 2 {
		t.Fatalf("姓名块不应被修改: %+v", cfg.Name)
	}
}

func TestApplyProfileCustomFontPath(t *testing.T) {
	cfg := DefaultConfig()
	applyOrFail(t, &cfg, `badge X v1 { block name { font: "fonts/Inter-Bold.ttf" } }`)
	if cfg.Name.Font.Src != "fonts/Inter-Bold.ttf" {
		t.Fatalf("自定义字体路径未生效: %+v", cfg.Name.Font)
	}
}

func TestApplyProfileErrors(t *testing.T) {
	cases := map[string]string{
		"unknown section": `badge X v1 { footer { x: 1mm } }`,
		"unknown block":   `badge X v1 { block badge { size: 1pt } }`,
		"unknown key":     `badge X v1 { page { depth: 3mm } }`,
		"bad length":      `badge X v1 { text { x: wide } }`,
		"bad color":       `badge X v1 { block name { color: "red" } }`,
		"bad size preset": `badge X v1 { page { size: B5 } }`,
	}
	for name, src := range cases {
		cfg := DefaultConfig()
		p, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", name, err)
		}
		if err := ApplyProfile(&cfg, p); err == nil {
			t.Fatalf("%s: 期望返回错误", name)
		}
	}
}

func TestApplyProfileRejectsZeroSize(t *testing.T) {
	cfg := DefaultConfig()
	p, err := dsl.ParseString(`badge X v1 { block title { size: 0mm } }`)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	err = ApplyProfile(&cfg, p)
	if err == nil || !strings.Contains(err.Error(), "0mm") {
		t.Fatalf("期望报告 0mm 字号错误，实际 %v", err)
	}
	if cfg.Title.Size != 20 {
		t.Fatalf("无效字号不应写入配置，实际 %g", cfg.Title.Size)
	}
}

func TestLoadProfileFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summit.badge")
	if err := os.WriteFile(path, []byte("badge S v1 {\n  text { start: 100mm }\n}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := DefaultConfig()
	if err := LoadProfile(&cfg, path); err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if cfg.StartY != 100 {
		t.Fatalf("start 未生效: %g", cfg.StartY)
	}

	err := LoadProfile(&cfg, filepath.Join(dir, "missing.badge"))
	if err == nil || !strings.Contains(err.Error(), "missing.badge") {
		t.Fatalf("缺失文件应返回带路径的错误，实际 %v", err)
	}
}
