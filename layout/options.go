package layout

// Typesetter 提供排版所需的字体测量，由具体渲染器实现（PDF 与位图各自使用自己的字体后端）。
// 宽度与度量均以 mm 返回，size 为 pt。
type Typesetter interface {
	TextWidth(content string, font FontResource, size float64) (float64, error)
	FontMetrics(font FontResource, size float64) (Metrics, error)
}
