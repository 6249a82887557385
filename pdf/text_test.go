package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteralStrings(t *testing.T) {
	texts := literalStrings("(Hello World) Tj")
	assert.Equal(t, []string{"Hello World"}, texts)

	texts = literalStrings("[(Knee) -250 (surgery)] TJ")
	assert.Equal(t, []string{"Knee", "surgery"}, texts)

	// Escaped parentheses stay literal.
	texts = literalStrings("(covered \\(section 4\\)) Tj")
	assert.Equal(t, []string{"covered (section 4)"}, texts)

	assert.Empty(t, literalStrings("1 0 0 1 72 720 Tm"))
}

func TestContentToTextShowOperations(t *testing.T) {
	content := "BT\n/F1 12 Tf\n(Policy covers) Tj\n(knee surgery.) Tj\nET"
	text := contentToText(content)
	assert.Equal(t, "Policy covers knee surgery.", text)
}

func TestContentToTextEmpty(t *testing.T) {
	assert.Equal(t, "", contentToText(""))
}

func TestContentToTextFallbackReadableLines(t *testing.T) {
	content := "q\n0.5 0.5 0.5 rg\nThis line is plain prose text\n1 0 0 1 10 10 cm\nQ"
	text := contentToText(content)
	assert.Contains(t, text, "plain prose text")
}

func TestDecodeOctalEscapes(t *testing.T) {
	assert.Equal(t, "25°C", decodeOctalEscapes("25\\260C"))
	// Unknown octal sequences are dropped.
	assert.Equal(t, "ab", decodeOctalEscapes("a\\123b"))
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c.", cleanText("a  b   c ."))
}

func TestIsOperatorLine(t *testing.T) {
	assert.True(t, isOperatorLine("1 0 0 1 72 720 Tm"))
	assert.True(t, isOperatorLine("0.2 0.3 0.4"))
	assert.False(t, isOperatorLine("The insured person must notify"))
}
