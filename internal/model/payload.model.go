package model

// PayloadKind tags the channel-specific rendering of a verse.
type PayloadKind string

const (
	PayloadText       PayloadKind = "text"
	PayloadAudio      PayloadKind = "audio"
	PayloadCallScript PayloadKind = "call_script"
)

// Payload is the rendered delivery content. Text channels fill Body; media
// channels fill LocalPath and, once published, PublicURL.
type Payload struct {
	Kind      PayloadKind `json:"kind"`
	Body      string      `json:"body,omitempty"`
	LocalPath string      `json:"local_path,omitempty"`
	PublicURL string      `json:"public_url,omitempty"`
}

// NeedsPublicURL reports whether dispatch requires the artifact to be
// reachable at a public address first.
func (p Payload) NeedsPublicURL() bool {
	return p.Kind == PayloadAudio || p.Kind == PayloadCallScript
}
