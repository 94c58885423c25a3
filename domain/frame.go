package domain

type FrameKind int

const (
	FrameText FrameKind = iota
	FrameBinary
	FrameClose
)

// Frame is one unit read from a client connection.
// Control frames other than close never reach the session.
type Frame struct {
	Kind    FrameKind
	Payload string
}

func TextFrame(payload string) Frame {
	return Frame{Kind: FrameText, Payload: payload}
}

func CloseFrame() Frame {
	return Frame{Kind: FrameClose}
}
