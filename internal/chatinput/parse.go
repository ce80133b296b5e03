package chatinput

import "regexp"

// PartKind classifies a span of parsed input.
type PartKind string

const (
	PartText     PartKind = "text"
	PartAgent    PartKind = "agent"
	PartSlash    PartKind = "slash"
	PartVariable PartKind = "variable"
)

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns End - Start.
func (r Range) Len() int { return r.End - r.Start }

// Part is one span of parsed input. Name holds the identifier without its
// leading sigil; Arg holds the text after ":" in "#name:arg".
type Part struct {
	Kind  PartKind `json:"kind"`
	Text  string   `json:"text"`
	Name  string   `json:"name,omitempty"`
	Arg   string   `json:"arg,omitempty"`
	Range Range    `json:"range"`
}

// ParsedInput is the result of Parse. Parts cover the text without gaps.
type ParsedInput struct {
	Text  string `json:"text"`
	Parts []Part `json:"parts"`
}

var (
	agentRe    = regexp.MustCompile(`^\s*(@([A-Za-z][\w-]*))(?:\s|$)`)
	slashRe    = regexp.MustCompile(`^\s*(/([A-Za-z][\w-]*))(?:\s|$)`)
	variableRe = regexp.MustCompile(`(?:^|\s)(#([A-Za-z][\w-]*)(?::(\S+))?)`)
)

// Parse splits text into parts. An agent is recognized only as the first
// token, a slash command only as the first token or the one right after the
// agent, and variables anywhere they start a word.
func Parse(text string) ParsedInput {
	var parts []Part
	pos := 0

	if m := agentRe.FindStringSubmatchIndex(text); m != nil {
		parts = appendText(parts, text, pos, m[2])
		parts = append(parts, Part{
			Kind:  PartAgent,
			Text:  text[m[2]:m[3]],
			Name:  text[m[4]:m[5]],
			Range: Range{m[2], m[3]},
		})
		pos = m[3]
	}

	if m := slashRe.FindStringSubmatchIndex(text[pos:]); m != nil {
		start, end := pos+m[2], pos+m[3]
		parts = appendText(parts, text, pos, start)
		parts = append(parts, Part{
			Kind:  PartSlash,
			Text:  text[start:end],
			Name:  text[pos+m[4] : pos+m[5]],
			Range: Range{start, end},
		})
		pos = end
	}

	base := pos
	for _, m := range variableRe.FindAllStringSubmatchIndex(text[base:], -1) {
		start, end := base+m[2], base+m[3]
		parts = appendText(parts, text, pos, start)
		p := Part{
			Kind:  PartVariable,
			Text:  text[start:end],
			Name:  text[base+m[4] : base+m[5]],
			Range: Range{start, end},
		}
		if m[6] >= 0 {
			p.Arg = text[base+m[6] : base+m[7]]
		}
		parts = append(parts, p)
		pos = end
	}

	parts = appendText(parts, text, pos, len(text))
	return ParsedInput{Text: text, Parts: parts}
}

func appendText(parts []Part, text string, start, end int) []Part {
	if end <= start {
		return parts
	}
	return append(parts, Part{Kind: PartText, Text: text[start:end], Range: Range{start, end}})
}

// Agent returns the agent part, if any.
func (p ParsedInput) Agent() (Part, bool) {
	return p.first(PartAgent)
}

// Slash returns the slash-command part, if any.
func (p ParsedInput) Slash() (Part, bool) {
	return p.first(PartSlash)
}

// Variables returns the variable parts in order.
func (p ParsedInput) Variables() []Part {
	var out []Part
	for _, part := range p.Parts {
		if part.Kind == PartVariable {
			out = append(out, part)
		}
	}
	return out
}

func (p ParsedInput) first(kind PartKind) (Part, bool) {
	for _, part := range p.Parts {
		if part.Kind == kind {
			return part, true
		}
	}
	return Part{}, false
}
