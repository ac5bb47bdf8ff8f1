package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// TableDark highlights generated chunk tables: labels stand out, escaped
// payload strings are dimmed.
var TableDark = styles.Register(chroma.MustNewStyle("jitgen-dark", chroma.StyleEntries{
	chroma.Text:           "#D4D4D4",
	chroma.Background:     "bg:#1e1e1e",
	chroma.Comment:        "#6A9955",
	chroma.CommentPreproc: "#C586C0",

	chroma.Keyword:     "#569CD6",
	chroma.KeywordType: "#4EC9B0",
	chroma.Name:        "#DCDCAA",

	chroma.LiteralNumber: "#FF5F87",
	chroma.String:        "#7C9C9D",
	chroma.StringEscape:  "#7C9C9D",

	chroma.Operator:    "#D4D4D4",
	chroma.Punctuation: "#808080",
}))
