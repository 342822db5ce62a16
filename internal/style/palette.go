package style

import (
	"github.com/zeebo/xxh3"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Colors is a fill/border pair.
type Colors struct {
	Fill   string
	Border string
}

var kindColors = map[schema.Kind]Colors{
	schema.KindClass:    {Fill: "#FFF2CC", Border: "#B39B00"},
	schema.KindMethod:   {Fill: "#E8FFF1", Border: "#00A46C"},
	schema.KindFunction: {Fill: "#E7F1FF", Border: "#2B6CB0"},
	schema.KindExternal: {Fill: "#F0F0F0", Border: "#888888"},
}

var tagColors = map[schema.Tag]Colors{
	schema.TagAsync:     {Fill: "#FFE082", Border: "#B28704"},
	schema.TagGenerator: {Fill: "#D1C4E9", Border: "#6A1B9A"},
	schema.TagIO:        {Fill: "#FFECB3", Border: "#A86E00"},
	schema.TagNet:       {Fill: "#B3E5FC", Border: "#0277BD"},
}

const (
	leafFill      = "#F9FBFF"
	defaultBorder = "#666"
	moduleColor   = "#5A78FF"
)

// EdgePalette colours edges whose endpoints carry no dominant tag.
var EdgePalette = []string{
	"#5B8FF9", "#61DDAA", "#65789B", "#F6BD16", "#7262FD",
	"#78D3F8", "#9661BC", "#F6903D", "#008685", "#F08BB4",
}

// tagPriority orders the tags that can dominate a node's colours.
var tagPriority = []schema.Tag{schema.TagAsync, schema.TagGenerator, schema.TagNet, schema.TagIO}

// DominantTag returns the highest-priority colouring tag of tags.
func DominantTag(tags schema.TagSet) (schema.Tag, bool) {
	for _, t := range tagPriority {
		if tags.Has(t) {
			return t, true
		}
	}
	return "", false
}

// KindColors returns the base colours of kind; unknown kinds are drawn as
// functions.
func KindColors(kind schema.Kind) Colors {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return kindColors[schema.KindFunction]
}

// EdgeColor picks the dominant-tag border of the callee, then of the
// caller, otherwise a palette entry chosen by a stable hash of the pair.
func EdgeColor(caller, callee string, tags map[string]schema.TagSet) string {
	for _, s := range []string{callee, caller} {
		if t, ok := DominantTag(tags[s]); ok {
			return tagColors[t].Border
		}
	}
	h := xxh3.HashString(caller + "\x00" + callee)
	return EdgePalette[h%uint64(len(EdgePalette))]
}
