package layout

import "github.com/ByLCY/badges/qr"

// 该文件定义单张胸牌的布局结果，供渲染器与调试 JSON 共用。
// 坐标统一为毫米，原点位于页面左上角，y 轴向下；字号统一为 pt。

// Badge 是一条记录排版后的完整结果，渲染器直接按此绘制。
type Badge struct {
	Index      int       `json:"index"` // 从 1 开始的记录序号
	Name       string    `json:"name"`  // 显示用姓名（可能已做首字母大写）
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	Texts      []TextBox `json:"texts"`
	QR         *QRBox    `json:"qr,omitempty"`
}

// Block 返回指定角色的文本块，不存在时返回 nil。
func (b *Badge) Block(role string) *TextBox {
	if b == nil {
		return nil
	}
	for i := range b.Texts {
		if b.Texts[i].Role == role {
			return &b.Texts[i]
		}
	}
	return nil
}

// 文本块角色。
const (
	RoleName    = "name"
	RoleTitle   = "title"
	RoleCompany = "company"
)

// TextBox 表示一个已经排好坐标的文本块（姓名/职位/公司）。
type TextBox struct {
	Role     string       `json:"role"`
	Content  string       `json:"content"`
	Font     FontResource `json:"font"`
	FontSize float64      `json:"fontSize"` // pt
	Color    Color        `json:"color"`
	Lines    []TextLine   `json:"lines"`
	Shrunk   bool         `json:"shrunk,omitempty"`  // 是否切换到了小号字体
	Dropped  int          `json:"dropped,omitempty"` // 超出行数上限被丢弃的行数
}

// TextLine 表示排版后的一行文本，Baseline 为页面绝对坐标。
type TextLine struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Baseline float64 `json:"baseline"`
	Width    float64 `json:"width"`
}

// QRBox 描述二维码的位置与尺寸（正方形，X/Y 为左上角）。
type QRBox struct {
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Size float64  `json:"size"`
	Data string   `json:"data"`
	Code *qr.Code `json:"-"`
}

// FontResource 描述字体来源。Src 可以是 "builtin:regular"、"builtin:bold" 或 TTF 文件路径。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Metrics 为字体在指定字号下的纵向度量，单位 mm。
type Metrics struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height 返回 ascent+descent。
func (m Metrics) Height() float64 { return m.Ascent + m.Descent }
