// Package rasterrenderer 将每张胸牌绘制为独立的 JPEG 文件。
package rasterrenderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/badges/fonts"
	"github.com/ByLCY/badges/layout"
	"github.com/ByLCY/badges/renderer"
)

// DefaultQuality 为 JPEG 默认压缩质量。
const DefaultQuality = 95

// Options configures the raster renderer.
type Options struct {
	OutputDir string
	BaseDir   string  // resolves relative font paths
	DPI       float64 // canvas resolution
	Quality   int     // JPEG quality 1-100
	Logger    logrus.FieldLogger
}

// Renderer rasterises badges with github.com/fogleman/gg and saves one JPEG per badge.
type Renderer struct {
	outputDir string
	baseDir   string
	dpi       float64
	quality   int
	log       logrus.FieldLogger

	mu    sync.Mutex
	fonts map[string]*sfnt.Font
	faces map[faceKey]font.Face

	backgrounds renderer.Backgrounds
	written     []string
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	src  string
	size float64
}

// NewRenderer creates a raster renderer writing into opts.OutputDir.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		outputDir: opts.OutputDir,
		baseDir:   opts.BaseDir,
		dpi:       opts.DPI,
		quality:   opts.Quality,
		log:       opts.Logger,
		fonts:     map[string]*sfnt.Font{},
		faces:     map[faceKey]font.Face{},
	}
	if r.dpi <= 0 {
		r.dpi = 300
	}
	if r.quality <= 0 || r.quality > 100 {
		r.quality = DefaultQuality
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// Files 返回已写出的文件路径，按渲染顺序排列。
func (r *Renderer) Files() []string {
	return append([]string(nil), r.written...)
}

// TextWidth 实现 layout.Typesetter：按画布 DPI 光栅化后的宽度换算回毫米。
func (r *Renderer) TextWidth(content string, f layout.FontResource, size float64) (float64, error) {
	face, err := r.face(f, size)
	if err != nil {
		return 0, err
	}
	return layout.PxToMm(fixedToFloat(font.MeasureString(face, content)), r.dpi), nil
}

// FontMetrics 实现 layout.Typesetter。
func (r *Renderer) FontMetrics(f layout.FontResource, size float64) (layout.Metrics, error) {
	face, err := r.face(f, size)
	if err != nil {
		return layout.Metrics{}, err
	}
	m := face.Metrics()
	return layout.Metrics{
		Ascent:  layout.PxToMm(fixedToFloat(m.Ascent), r.dpi),
		Descent: layout.PxToMm(fixedToFloat(m.Descent), r.dpi),
	}, nil
}

// RenderBadge 绘制一张胸牌并立即保存为 JPEG。
func (r *Renderer) RenderBadge(badge *layout.Badge) error {
	if badge == nil {
		return fmt.Errorf("胸牌布局为空")
	}
	w, h := layout.PixelSize(badge.Width, badge.Height, r.dpi)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("画布尺寸无效: %dx%dpx", w, h)
	}

	img, err := r.base(badge, w, h)
	if err != nil {
		return err
	}
	dc := gg.NewContextForRGBA(img)
	for _, tb := range badge.Texts {
		if err := r.drawText(dc, tb); err != nil {
			return err
		}
	}
	if badge.QR != nil && badge.QR.Code != nil {
		r.drawQR(img, badge.QR)
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(r.outputDir, FileName(badge.Index, badge.Name))
	if err := gg.SaveJPG(path, img, r.quality); err != nil {
		return fmt.Errorf("保存 %s 失败: %w", path, err)
	}
	r.written = append(r.written, path)
	r.log.WithField("file", path).Debug("已保存胸牌图片")
	return nil
}

// Close 释放字体资源并返回输出目录；未写出任何文件时返回空串。
func (r *Renderer) Close() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for k, face := range r.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.faces, k)
	}
	if len(r.written) == 0 {
		return "", errors.Join(errs...)
	}
	return r.outputDir, errors.Join(errs...)
}

// base 返回新的画布：背景图的拷贝，背景缺失时为白底。
func (r *Renderer) base(badge *layout.Badge, w, h int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg, err := r.backgrounds.Stretched(badge.Background, w, h)
	switch {
	case err == nil:
		copy(img.Pix, bg.Pix)
		return img, nil
	case errors.Is(err, renderer.ErrAssetMissing):
		r.log.WithField("path", badge.Background).Debug("背景图不存在，使用白色画布")
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
		return img, nil
	default:
		return nil, err
	}
}

func (r *Renderer) drawText(dc *gg.Context, tb layout.TextBox) error {
	if len(tb.Lines) == 0 {
		return nil
	}
	face, err := r.face(tb.Font, tb.FontSize)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dc.SetFontFace(face)
	dc.SetColor(color.RGBA{R: uint8(tb.Color.R), G: uint8(tb.Color.G), B: uint8(tb.Color.B), A: 0xff})
	for _, line := range tb.Lines {
		dc.DrawString(line.Content, layout.MmToPx(line.X, r.dpi), layout.MmToPx(line.Baseline, r.dpi))
	}
	return nil
}

// drawQR 将二维码按最近邻缩放到目标像素尺寸，保持模块边缘清晰。
func (r *Renderer) drawQR(dst *image.RGBA, box *layout.QRBox) {
	x := int(math.Round(layout.MmToPx(box.X, r.dpi)))
	y := int(math.Round(layout.MmToPx(box.Y, r.dpi)))
	size := int(math.Round(layout.MmToPx(box.Size, r.dpi)))
	rect := image.Rect(x, y, x+size, y+size)
	src := box.Code.Image(1)
	xdraw.NearestNeighbor.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
}

func (r *Renderer) face(f layout.FontResource, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须大于 0，实际 %g", size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{src: f.Src, size: size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	parsed, err := r.parseFont(f.Src)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     r.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 失败: %w", f.Src, err)
	}
	r.faces[key] = face
	return face, nil
}

func (r *Renderer) parseFont(src string) (*sfnt.Font, error) {
	if parsed, ok := r.fonts[src]; ok {
		return parsed, nil
	}
	data, err := fonts.Load(src, r.baseDir)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	r.fonts[src] = parsed
	return parsed, nil
}

// FileName 返回胸牌图片文件名：badge_<序号>_<清洗后的姓名>.jpg。
func FileName(index int, name string) string {
	return fmt.Sprintf("badge_%d_%s.jpg", index, Sanitize(name))
}

// Sanitize 只保留字母、数字与空格，去掉首尾空白后把空格替换为下划线。
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
