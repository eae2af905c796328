package vision

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel 將偵測標籤轉為食材名稱：
//  1. 小寫，去除重音
//  2. '_' 與 '-' 轉為空白
//  3. 移除數字與其他標點
//  4. 合併連續空白並去除前後空白
func NormalizeLabel(label string) string {
	s := strings.ToLower(label)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			sb.WriteByte(' ')
		case unicode.IsLetter(r):
			sb.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// NormalizeAll 正規化並去除重複（不分大小寫，保留首次出現順序），空字串會被丟棄
func NormalizeAll(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		name := NormalizeLabel(label)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
