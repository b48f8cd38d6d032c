package codec

import (
	"strings"

	"github.com/noah-isme/sma-course-api/internal/models"
	appErrors "github.com/noah-isme/sma-course-api/pkg/errors"
	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

// Block is one course record cut out of a sequence of sibling courses.
type Block struct {
	Variant models.Variant
	// Body is the text between the wrapper tags, wrappers excluded.
	Body string
}

// SplitCourses partitions a concatenation of course records into blocks in
// encounter order. Each record must open with a known wrapper tag and is
// closed by the matching close tag of that same wrapper.
func SplitCourses(courses string) ([]Block, error) {
	var blocks []Block
	rest := courses
	for {
		rest = strings.TrimLeft(rest, "\n\t ")
		if rest == "" {
			return blocks, nil
		}

		vc, ok := variantForPrefix(rest)
		if !ok {
			return nil, appErrors.Malformed(nil, "unrecognized course wrapper %q", firstLine(rest))
		}
		span, ok := tagtext.Find(rest, vc.wrapper)
		if !ok || span.Start != 0 {
			return nil, appErrors.Malformed(nil, "missing %s for course %d", tagtext.Close(vc.wrapper), len(blocks)+1)
		}

		blocks = append(blocks, Block{Variant: vc.variant, Body: rest[span.ContentStart:span.ContentEnd]})
		rest = rest[span.End:]
	}
}

func variantForPrefix(s string) (variantCodec, bool) {
	for _, vc := range variantCodecs {
		if _, ok := tagtext.HasPrefixTag(s, vc.wrapper); ok {
			return vc, true
		}
	}
	return variantCodec{}, false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 40
	if len(s) > max {
		s = s[:max]
	}
	return s
}
