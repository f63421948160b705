package jsonutil

import "strings"

const codeFence = "```"

// ExtractFenced 返回第一个代码围栏内的内容（去掉语言标记行）。
func ExtractFenced(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	if idx := strings.Index(block, "\n"); idx != -1 {
		first := strings.TrimSpace(block[:idx])
		if first != "" && !strings.ContainsAny(first, "[{") {
			block = block[idx+1:]
		}
	}
	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}
	return block, true
}

// ExtractObject 返回文本中第一个括号配平的 JSON 对象。
func ExtractObject(raw string) (string, bool) {
	obj, _, ok := objectAt(raw, 0)
	return obj, ok
}

// Objects 依次返回文本中所有顶层 JSON 对象候选。
func Objects(raw string) []string {
	var out []string
	pos := 0
	for pos < len(raw) {
		obj, next, ok := objectAt(raw, pos)
		if !ok {
			break
		}
		out = append(out, obj)
		pos = next
	}
	return out
}

func objectAt(raw string, from int) (string, int, bool) {
	rel := strings.Index(raw[from:], "{")
	if rel == -1 {
		return "", -1, false
	}
	start := from + rel
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[start : i+1]), i + 1, true
			}
		}
	}
	// 括号未配平：跳过这个起点继续找
	if start+1 < len(raw) {
		return objectAt(raw, start+1)
	}
	return "", -1, false
}
