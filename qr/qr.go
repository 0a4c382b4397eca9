// Package qr 将字符串编码为二维码位图（纠错等级 H），供两种渲染器绘制。
package qr

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

// Border 为位图四周保留的空白模块数。
const Border = 1

// ErrEmpty 表示没有可编码的数据；调用方应跳过二维码而不是绘制空白占位。
var ErrEmpty = errors.New("qr: empty data")

// Code 是编码后的二维码位图，包含四周 Border 个空白模块。创建后只读。
type Code struct {
	Data    string
	Version int
	modules [][]bool
}

// Encode 以纠错等级 H 编码 data，自动选择能容纳数据的最小版本。
// 相同输入总是得到相同位图。
func Encode(data string) (*Code, error) {
	if data == "" {
		return nil, ErrEmpty
	}
	q, err := qrcode.New(data, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	n := len(bitmap) + 2*Border
	modules := make([][]bool, n)
	for y := range modules {
		modules[y] = make([]bool, n)
	}
	for y, row := range bitmap {
		for x, dark := range row {
			modules[y+Border][x+Border] = dark
		}
	}
	return &Code{Data: data, Version: q.VersionNumber, modules: modules}, nil
}

// Size 返回每边的模块数（含空白边）。
func (c *Code) Size() int { return len(c.modules) }

// Dark 报告 (x, y) 处的模块是否为深色；越界视为浅色。
func (c *Code) Dark(x, y int) bool {
	if y < 0 || y >= len(c.modules) || x < 0 || x >= len(c.modules[y]) {
		return false
	}
	return c.modules[y][x]
}

// Modules 返回位图的副本。
func (c *Code) Modules() [][]bool {
	out := make([][]bool, len(c.modules))
	for i, row := range c.modules {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

// Image 将位图渲染为灰度图，每个模块占 scale×scale 像素。
func (c *Code) Image(scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	n := c.Size() * scale
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := color.Gray{Y: 0xff}
			if c.modules[y/scale][x/scale] {
				v = color.Gray{Y: 0}
			}
			img.SetGray(x, y, v)
		}
	}
	return img
}
