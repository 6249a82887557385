package pdf

import (
	"slices"
	"strconv"
	"strings"
)

// contentToText turns a raw PDF page content stream into readable text.
// Text show operations (Tj, TJ, ', ") are preferred; when a page has none,
// any lines that look like prose are collected as a fallback.
func contentToText(content string) string {
	if content == "" {
		return ""
	}

	texts := textShowStrings(content)
	if len(texts) == 0 {
		return readableLines(content)
	}

	return cleanText(strings.Join(texts, " "))
}

// textShowStrings collects the string operands of text show operations.
func textShowStrings(content string) []string {
	var texts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, " Tj") && !strings.Contains(line, " TJ") &&
			!strings.Contains(line, "' ") && !strings.Contains(line, "\" ") {
			continue
		}
		for _, text := range literalStrings(line) {
			if text != "" {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

// literalStrings extracts all parenthesized string literals from one
// content stream line, unescaping the basic PDF escape sequences.
func literalStrings(line string) []string {
	var texts []string
	inText := false
	start := -1

	for i, char := range line {
		if char == '(' && (i == 0 || line[i-1] != '\\') {
			inText = true
			start = i + 1
		} else if char == ')' && inText && (i == 0 || line[i-1] != '\\') {
			if start != -1 && start < i {
				text := line[start:i]
				text = strings.ReplaceAll(text, "\\(", "(")
				text = strings.ReplaceAll(text, "\\)", ")")
				text = strings.ReplaceAll(text, "\\\\", "\\")
				text = strings.ReplaceAll(text, "\\n", "\n")
				text = strings.ReplaceAll(text, "\\r", "\r")
				text = strings.ReplaceAll(text, "\\t", "\t")
				if strings.TrimSpace(text) != "" {
					texts = append(texts, text)
				}
			}
			inText = false
			start = -1
		}
	}

	return texts
}

// readableLines keeps content lines that look like prose rather than
// PDF operators, as a fallback for pages without text show operations.
func readableLines(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isOperatorLine(line) {
			continue
		}
		if isReadable(line) {
			kept = append(kept, line)
		}
	}
	return cleanText(strings.Join(kept, " "))
}

var pdfOperators = []string{
	"BT", "ET", "Tf", "Td", "TD", "Tm", "T*", "Tj", "TJ", "'", "\"",
	"q", "Q", "cm", "w", "J", "j", "M", "d", "ri", "i", "gs",
	"CS", "cs", "SC", "SCN", "sc", "scn", "G", "g", "RG", "rg", "K", "k",
	"m", "l", "c", "v", "y", "h", "re", "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n",
	"W", "W*", "BX", "EX", "MP", "DP", "BMC", "BDC", "EMC",
}

func isOperatorLine(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	if slices.Contains(pdfOperators, words[len(words)-1]) {
		return true
	}

	// Lines that are mostly numbers are coordinates or matrices.
	nonNumeric := 0
	for _, word := range words {
		if _, err := strconv.ParseFloat(word, 64); err != nil {
			nonNumeric++
		}
	}
	return float64(nonNumeric)/float64(len(words)) < 0.3
}

func isReadable(line string) bool {
	if len(line) < 2 {
		return false
	}
	alpha := 0
	for _, char := range line {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') {
			alpha++
		}
	}
	return float64(alpha)/float64(len(line)) >= 0.3
}

// cleanText normalizes extracted text: octal escapes, control characters
// and whitespace runs.
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	text = decodeOctalEscapes(text)
	text = stripBinary(text)

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")

	return text
}

var octalReplacements = map[string]string{
	"\\037": "",
	"\\260": "°",
	"\\256": "®",
	"\\251": "©",
	"\\231": "'",
	"\\221": "'",
	"\\223": "\"",
	"\\224": "\"",
	"\\226": "–",
	"\\227": "—",
	"\\240": " ",
	"\\012": "\n",
	"\\015": "\r",
	"\\011": "\t",
}

func decodeOctalEscapes(text string) string {
	for octal, replacement := range octalReplacements {
		text = strings.ReplaceAll(text, octal, replacement)
	}

	// Drop any remaining 3-digit octal sequences.
	var result strings.Builder
	i := 0
	for i < len(text) {
		if i < len(text)-3 && text[i] == '\\' &&
			text[i+1] >= '0' && text[i+1] <= '7' &&
			text[i+2] >= '0' && text[i+2] <= '7' &&
			text[i+3] >= '0' && text[i+3] <= '7' {
			i += 4
		} else {
			result.WriteByte(text[i])
			i++
		}
	}
	return result.String()
}

func stripBinary(text string) string {
	var result strings.Builder
	for _, char := range text {
		switch {
		case char >= 32 && char <= 126,
			char == '\n' || char == '\r' || char == '\t',
			char >= 0x00A0 && char <= 0x00FF,
			char >= 0x2000 && char <= 0x206F:
			result.WriteRune(char)
		case char < 32:
			result.WriteRune(' ')
		}
	}
	return result.String()
}
