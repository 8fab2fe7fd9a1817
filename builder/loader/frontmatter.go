package loader

import (
	"bytes"
	"errors"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// ErrTOMLFrontMatter is returned for documents opening with "+++".
var ErrTOMLFrontMatter = errors.New("toml front matter is not supported, use --- yaml")

// SplitFrontMatter separates `---` delimited YAML front matter from the body.
// A document without front matter returns had=false and the full input.
func SplitFrontMatter(content []byte) (frontMatter, body []byte, had bool, err error) {
	nl := detectNewline(content)

	if bytes.HasPrefix(content, []byte("+++"+nl)) {
		return nil, nil, false, ErrTOMLFrontMatter
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// a closing delimiter on the last line without a newline
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := max(start, len(content)-len(nl)-3)
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
