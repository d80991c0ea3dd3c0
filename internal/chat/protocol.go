package chat

// Frame types for the client WebSocket protocol.
const (
	frameTypeHello   = "hello"
	frameTypeStatus  = "status"
	frameTypeMessage = "message"
)

// frame is the envelope for all WebSocket traffic between client and
// backend. The Type field discriminates the payload.
type frame struct {
	Type string `json:"type"`

	// hello fields
	ConnID string `json:"connId,omitempty"`
	User   string `json:"user,omitempty"`

	// status fields
	Online *bool `json:"online,omitempty"`

	// message fields
	Message *Message `json:"message,omitempty"`
}
