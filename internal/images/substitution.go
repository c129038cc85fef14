package images

import (
	"regexp"
	"strings"
)

// imageLinePattern captures the declaration prefix, the optional opening quote,
// and the optional closing quote independently. A value with an unmatched quote
// is rewritten with the same unmatched quote.
var imageLinePattern = regexp.MustCompile(`(?m)^([ \t]*image:[ \t]*)(["']?)[^"'\r\n]+(["']?)`)

const (
	prefixGroupIndexConstant       = 1
	openingQuoteGroupIndexConstant = 2
	closingQuoteGroupIndexConstant = 3
)

// ReplaceImageReferences rewrites every image declaration in content to use
// imageReference and reports how many declarations were rewritten.
func ReplaceImageReferences(content string, imageReference string) (string, int) {
	matches := imageLinePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, 0
	}

	var builder strings.Builder
	builder.Grow(len(content) + len(matches)*len(imageReference))

	previousEnd := 0
	for _, match := range matches {
		builder.WriteString(content[previousEnd:match[0]])
		builder.WriteString(submatch(content, match, prefixGroupIndexConstant))
		builder.WriteString(submatch(content, match, openingQuoteGroupIndexConstant))
		builder.WriteString(imageReference)
		builder.WriteString(submatch(content, match, closingQuoteGroupIndexConstant))
		previousEnd = match[1]
	}
	builder.WriteString(content[previousEnd:])

	return builder.String(), len(matches)
}

func submatch(content string, match []int, groupIndex int) string {
	start, end := match[2*groupIndex], match[2*groupIndex+1]
	if start < 0 {
		return ""
	}
	return content[start:end]
}
