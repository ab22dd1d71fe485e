package types

import "github.com/DoyleJ11/ninja-squad-backend/internal/session"

// Client message types.
const (
	MsgJoinQueue  = "JoinQueue"
	MsgLeaveQueue = "LeaveQueue"
	MsgReady      = "Ready"
	MsgUse        = "Use"
)

// Server frame types.
const (
	MsgPlace   = "place"
	MsgRemove  = "remove"
	MsgAnimate = "animate"
	MsgSound   = "sound"
	MsgShowUI  = "showUI"
	MsgCloseUI = "closeUI"
	MsgTag     = "tag"
	MsgInput   = "input"
	MsgError   = "error"
)

type ClientMessage struct {
	Type string `json:"type"`
	Role string `json:"role,omitempty"`
	Mode int    `json:"mode,omitempty"`
	X    int    `json:"x,omitempty"`
	Y    int    `json:"y,omitempty"`
}

type ServerMessage struct {
	Type    string             `json:"type"`
	Entity  *session.Entity    `json:"entity,omitempty"`
	Clip    string             `json:"clip,omitempty"`
	Style   session.PlayStyle  `json:"style,omitempty"`
	Sound   *session.Sound     `json:"sound,omitempty"`
	Window  string             `json:"window,omitempty"`
	Payload any                `json:"payload,omitempty"`
	Tag     string             `json:"tag,omitempty"`
	Args    []any              `json:"args,omitempty"`
	Input   *session.InputSpec `json:"input,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func Error(msg string) ServerMessage {
	return ServerMessage{Type: MsgError, Error: msg}
}
