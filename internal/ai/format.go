package ai

import (
	"regexp"
	"strings"
)

// Models escape markdown punctuation and LaTeX inconsistently; the renderer
// expects plain markdown with KaTeX-style math. These normalizers are chains
// of literal substitutions ported behavior-for-behavior from the frontend's
// expectations, not a full markdown parser.

// markdownUnescaper undoes model-escaped markdown punctuation and tightens
// heading/list spacing.
var markdownUnescaper = strings.NewReplacer(
	`\_`, `_`,
	`\*`, `*`,
	`\-`, `-`,
	`\#`, `#`,
	`\[`, `[`,
	`\]`, `]`,
	`\(`, `(`,
	`\)`, `)`,
	"\n\n\n", "\n\n",
	"\n\n#", "\n#",
	"\n- ", "\n\n- ",
	"\n  - ", "\n- ",
	"\n1. ", "\n\n1. ",
)

// mathSpacer collapses doubled backslashes and fixes spacing around math
// delimiters so inline math renders.
var mathSpacer = strings.NewReplacer(
	`\\`, `\`,
	" $", "$",
	"$ ", "$",
	"\n$$", "\n\n$$",
	"$$\n", "$$\n\n",
)

// strayBackslash matches a backslash not introducing a LaTeX command.
// RE2 has no lookahead, so the following character (or end of string) is
// captured and restored in the replacement.
var strayBackslash = regexp.MustCompile(`\\([^a-zA-Z{]|$)`)

// latexCommands are re-escaped when the model emitted them bare (e.g. "frac{1}{2}").
var latexCommands = []string{
	"frac", "sqrt", "sum", "int", "prod", "lim",
	"alpha", "beta", "gamma", "delta", "theta",
	"pi", "sigma", "omega", "infty", "cdot",
	"times", "div", "pm", "mp", "leq", "geq",
	"neq", "approx", "equiv", "rightarrow",
}

// bareCommandRE matches a bare command name followed by "{", whitespace, or "("
// and not preceded by a backslash. Prebuilt per command.
var bareCommandRE = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(latexCommands))
	for _, cmd := range latexCommands {
		m[cmd] = regexp.MustCompile(`(^|[^\\a-zA-Z])(` + cmd + `)([{\s(])`)
	}
	return m
}()

// FormatLesson normalizes generated lesson markdown: unescapes punctuation,
// fixes list and math spacing, drops stray backslashes, and restores the
// backslash on known LaTeX commands.
func FormatLesson(content string) string {
	if content == "" {
		return content
	}

	content = markdownUnescaper.Replace(content)
	content = mathSpacer.Replace(content)
	content = strayBackslash.ReplaceAllString(content, "$1")

	for _, cmd := range latexCommands {
		content = bareCommandRE[cmd].ReplaceAllString(content, `$1\$2$3`)
		content = strings.ReplaceAll(content, `\\`+cmd, `\`+cmd)
	}

	return strings.TrimSpace(content)
}

// FormatQuizText applies the same normalization as FormatLesson. Quiz content
// is stored as JSON, so this is used on raw text fallbacks only.
func FormatQuizText(content string) string {
	return FormatLesson(content)
}

// latexEscaper re-doubles the backslash on math commands that survive
// JSON decoding with a single backslash.
var latexEscaper = strings.NewReplacer(
	`\\`, `\`,
	" $ ", "$",
	" $$ ", "$$",
	"\n$$", "\n\n$$\n\n",
	`\frac`, `\\frac`,
	`\sqrt`, `\\sqrt`,
	`\sum`, `\\sum`,
	`\int`, `\\int`,
)

// FormatLaTeX normalizes a single math-bearing string (quiz question, option,
// answer, explanation) for math and science subjects.
func FormatLaTeX(content string) string {
	if content == "" {
		return content
	}
	return latexEscaper.Replace(content)
}
