package domain

// OptionKind tells the client what to do with a quick-reply option:
// navigate to a portal page or send the value back as a new prompt.
type OptionKind string

const (
	OptionLink    OptionKind = "link"
	OptionMessage OptionKind = "message"
)

// ReplyOption is a labeled action offered alongside a reply.
type ReplyOption struct {
	Label string     `json:"label"`
	Value string     `json:"value"`
	Kind  OptionKind `json:"type"`
}

// Reply is the assistant's answer to one prompt. It is transient: only its
// Text is flattened into the ChatMessage that gets logged.
type Reply struct {
	Text    string        `json:"text"`
	Options []ReplyOption `json:"options,omitempty"`
}
