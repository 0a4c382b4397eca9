package binding

import (
	"net/url"
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Lookup 按字段名返回取值，例如 record.Record.Get。
type Lookup func(field string) (string, bool)

// Interpolate 将文本中的 ${字段名} 替换为 lookup 返回的值。
// 字段名可包含空格（如 ${QR Code}）；加上 "|url" 后缀时对值做 URL 转义。
// 若 lookup 为空或字段不存在，则保留原占位符。
func Interpolate(text string, lookup Lookup) string {
	if lookup == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		field, filter := parseExpr(groups[1])
		if field == "" {
			return match
		}
		val, ok := lookup(field)
		if !ok {
			return match
		}
		if filter == "url" {
			return url.PathEscape(val)
		}
		return val
	})
}

// HasPlaceholders 报告文本中是否含有 ${...} 占位符。
func HasPlaceholders(text string) bool {
	return exprPattern.MatchString(text)
}

func parseExpr(expr string) (string, string) {
	field, filter, _ := strings.Cut(expr, "|")
	return strings.TrimSpace(field), strings.ToLower(strings.TrimSpace(filter))
}
