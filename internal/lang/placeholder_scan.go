package lang

import "strings"

// Placeholder describes one `{{...}}` span located inside a template
// (spec §4.4). Open/Close bound the two-character brace tokens
// themselves; ContentStart/ContentEnd bound the query text between
// them.
type Placeholder struct {
	OpenStart    int
	ContentStart int
	ContentEnd   int
	CloseEnd     int
}

func (p Placeholder) Body(template string) string {
	return template[p.ContentStart:p.ContentEnd]
}

// FindPlaceholder locates the next placeholder at or after from, using
// the engine's "last opener, first closer" rule: a run of three or
// more consecutive '{' treats every brace but the final two as literal
// text ("last-`{` opener"), and the first "}}" encountered after the
// content start ends the placeholder even if literal '}' characters
// follow ("first-`}}` closer"). Returns found=false once no "{{" run
// remains, or when a "{{" is never closed (the remainder is left as
// literal text).
func FindPlaceholder(template string, from int) (ph Placeholder, found bool) {
	i := strings.Index(template[from:], "{{")
	if i < 0 {
		return ph, false
	}
	i += from

	runEnd := i + 2
	for runEnd < len(template) && template[runEnd] == '{' {
		runEnd++
	}
	openStart := runEnd - 2
	contentStart := runEnd

	closeRel := strings.Index(template[contentStart:], "}}")
	if closeRel < 0 {
		return ph, false
	}
	contentEnd := contentStart + closeRel

	return Placeholder{
		OpenStart:    openStart,
		ContentStart: contentStart,
		ContentEnd:   contentEnd,
		CloseEnd:     contentEnd + 2,
	}, true
}

// XMLTag describes a `<name>...</name>` pair that tightly wraps a
// single placeholder with no other content between the tags, used by
// XML-mode filling to drop the whole element when its value resolves
// to nothing (spec §4.4 XML mode).
type XMLTag struct {
	Start, End int // span of the full "<name>...</name>" element
	Name       string
}

// CarveXMLTag looks for a tag pair immediately and exclusively wrapping
// the placeholder at [phOpenStart, phCloseEnd) in template. ok is false
// when the placeholder isn't the sole content of an enclosing element
// (including when it sits at the document root).
func CarveXMLTag(template string, phOpenStart, phCloseEnd int) (tag XMLTag, ok bool) {
	openEnd := phOpenStart
	if openEnd == 0 || template[openEnd-1] != '>' {
		return tag, false
	}
	tagOpenStart := strings.LastIndex(template[:openEnd-1], "<")
	if tagOpenStart < 0 {
		return tag, false
	}
	tagOpenBody := template[tagOpenStart+1 : openEnd-1]
	name := strings.TrimSuffix(tagOpenBody, "/")
	if name == "" || !isTagName(name) {
		return tag, false
	}

	closeTag := "</" + name + ">"
	if !strings.HasPrefix(template[phCloseEnd:], closeTag) {
		return tag, false
	}

	return XMLTag{
		Start: tagOpenStart,
		End:   phCloseEnd + len(closeTag),
		Name:  name,
	}, true
}

func isTagName(s string) bool {
	for i, r := range s {
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) && r != ':' {
			return false
		}
	}
	return len(s) > 0
}
