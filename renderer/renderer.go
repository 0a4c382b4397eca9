package renderer

import "github.com/ByLCY/badges/layout"

// Renderer 将排好版的胸牌输出为最终产物，例如 PDF 页面或位图文件。
// 渲染器同时负责字体测量（layout.Typesetter），保证排版与绘制使用同一套字体度量。
type Renderer interface {
	layout.Typesetter
	// RenderBadge 输出一张胸牌：PDF 追加一页，位图写出一个文件。
	RenderBadge(badge *layout.Badge) error
	// Close 完成输出（PDF 在此一次性写盘）并返回产物路径。
	Close() (string, error)
}
