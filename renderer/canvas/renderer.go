package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/badges/fonts"
	"github.com/ByLCY/badges/layout"
	"github.com/ByLCY/badges/qr"
	"github.com/ByLCY/badges/renderer"
)

// Renderer draws badges as pages of a single PDF via github.com/tdewolff/canvas.
// The document is kept in memory and written once by Close.
type Renderer struct {
	outputPath string
	baseDir    string
	dpi        float64
	meta       Meta
	log        logrus.FieldLogger

	buf    bytes.Buffer
	writer *pdf.PDF
	pages  int

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	backgrounds renderer.Backgrounds
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Meta 保存 PDF 元信息。
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// Options configures the PDF renderer.
type Options struct {
	OutputPath string
	BaseDir    string  // resolves relative font paths
	DPI        float64 // background images are resampled to this resolution
	Meta       Meta
	Logger     logrus.FieldLogger
}

// NewRenderer creates a PDF renderer that writes to opts.OutputPath on Close.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		outputPath:   opts.OutputPath,
		baseDir:      opts.BaseDir,
		dpi:          opts.DPI,
		meta:         opts.Meta,
		log:          opts.Logger,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.dpi <= 0 {
		r.dpi = 150
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// Pages returns the number of pages committed so far.
func (r *Renderer) Pages() int { return r.pages }

// RenderBadge 为一张胸牌追加一页：背景、文本、二维码，然后提交页面。
func (r *Renderer) RenderBadge(badge *layout.Badge) error {
	if badge == nil {
		return fmt.Errorf("胸牌布局为空")
	}
	if badge.Width <= 0 || badge.Height <= 0 {
		return fmt.Errorf("页面尺寸无效: %gx%gmm", badge.Width, badge.Height)
	}

	c := canvas.New(badge.Width, badge.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawBackground(ctx, badge); err != nil {
		return err
	}
	for _, tb := range badge.Texts {
		if err := r.drawText(ctx, tb); err != nil {
			return err
		}
	}
	if badge.QR != nil && badge.QR.Code != nil {
		drawQR(ctx, badge.QR)
	}

	r.finishPage(c, badge)
	return nil
}

// finishPage 将画布提交到 PDF；第一页创建文档，之后每页追加新页面。
func (r *Renderer) finishPage(c *canvas.Canvas, badge *layout.Badge) {
	if r.writer == nil {
		r.writer = pdf.New(&r.buf, badge.Width, badge.Height, nil)
		r.applyMeta()
	} else {
		r.writer.NewPage(badge.Width, badge.Height)
	}
	c.RenderTo(r.writer)
	r.pages++
}

// Close 完成 PDF 并一次性写入输出路径。没有任何页面时不生成文件。
func (r *Renderer) Close() (string, error) {
	if r.writer == nil {
		r.log.Info("没有可输出的胸牌，未生成 PDF")
		return "", nil
	}
	if err := r.writer.Close(); err != nil {
		return "", fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.writer = nil
	if dir := filepath.Dir(r.outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(r.outputPath, r.buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return r.outputPath, nil
}

func (r *Renderer) applyMeta() {
	keywords := strings.Join(r.meta.Keywords, ", ")
	r.writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
}

// TextWidth 实现 layout.Typesetter：返回文本在指定字号（pt）下的宽度（mm）。
func (r *Renderer) TextWidth(content string, font layout.FontResource, size float64) (float64, error) {
	face, err := r.fontFace(font, size, layout.Color{})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(content), nil
}

// FontMetrics 实现 layout.Typesetter：返回 ascent/descent（mm）。
func (r *Renderer) FontMetrics(font layout.FontResource, size float64) (layout.Metrics, error) {
	face, err := r.fontFace(font, size, layout.Color{})
	if err != nil {
		return layout.Metrics{}, err
	}
	m := face.Metrics()
	return layout.Metrics{Ascent: m.Ascent, Descent: m.Descent}, nil
}

// drawBackground 将背景图拉伸铺满整页；文件不存在时记录警告并跳过。
func (r *Renderer) drawBackground(ctx *canvas.Context, badge *layout.Badge) error {
	if badge.Background == "" {
		return nil
	}
	w, h := layout.PixelSize(badge.Width, badge.Height, r.dpi)
	img, err := r.backgrounds.Stretched(badge.Background, w, h)
	if errors.Is(err, renderer.ErrAssetMissing) {
		r.log.WithFields(logrus.Fields{"path": badge.Background, "badge": badge.Index}).
			Warn("背景图不存在，跳过背景")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.DrawImage(0, 0, img, canvas.DPMM(float64(w)/badge.Width))
	return nil
}

// drawText 按布局给出的绝对基线逐行左对齐绘制。
func (r *Renderer) drawText(ctx *canvas.Context, tb layout.TextBox) error {
	if len(tb.Lines) == 0 {
		return nil
	}
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	for _, line := range tb.Lines {
		ctx.DrawText(line.X, line.Baseline, canvas.NewTextLine(face, line.Content, canvas.Left))
	}
	return nil
}

// drawQR 先铺白底，再把每行连续的深色模块合并成矩形，作为一条路径填充。
func drawQR(ctx *canvas.Context, box *layout.QRBox) {
	code := box.Code
	n := code.Size()
	module := box.Size / float64(n)

	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(box.X, box.Y, canvas.Rectangle(box.Size, box.Size))

	ctx.SetFillColor(canvas.Black)
	ctx.DrawPath(box.X, box.Y, modulePath(code, module))
}

func modulePath(code *qr.Code, module float64) *canvas.Path {
	p := &canvas.Path{}
	n := code.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; {
			if !code.Dark(x, y) {
				x++
				continue
			}
			start := x
			for x < n && code.Dark(x, y) {
				x++
			}
			x0, x1 := float64(start)*module, float64(x)*module
			y0, y1 := float64(y)*module, float64(y+1)*module
			p.MoveTo(x0, y0)
			p.LineTo(x1, y0)
			p.LineTo(x1, y1)
			p.LineTo(x0, y1)
			p.Close()
		}
	}
	return p
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须大于 0，实际 %g", size)
	}
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.log.WithError(err).WithField("font", font.Src).Warn("字体加载失败，改用内置字体")
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := fonts.Load(font.Src, r.baseDir)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(layout.FontRegular.Src, "")
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("badge-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
