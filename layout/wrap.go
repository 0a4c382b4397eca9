package layout

import (
	"strings"
	"unicode/utf8"
)

// Wrap 使用贪心算法按空白分词换行，保证每行宽度不超过 maxWidth。
// 单词不会被拆开：比 maxWidth 还宽的单词独占一行。
func Wrap(content string, maxWidth float64, measure func(string) (float64, error)) ([]string, error) {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil, nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		w, err := measure(candidate)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current), nil
}

// WrapByChars 按字符数贪心换行，每行最多 maxChars 个字符（超长单词独占一行）。
func WrapByChars(content string, maxChars int) []string {
	if maxChars < 1 {
		maxChars = 1
	}
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	count := utf8.RuneCountInString(current)
	for _, word := range words[1:] {
		n := utf8.RuneCountInString(word)
		if count+1+n <= maxChars {
			current += " " + word
			count += 1 + n
			continue
		}
		lines = append(lines, current)
		current = word
		count = n
	}
	return append(lines, current)
}

// wordCount 返回按空白切分后的词数。
func wordCount(content string) int {
	return len(strings.Fields(content))
}
