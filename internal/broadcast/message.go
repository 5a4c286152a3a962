// Package broadcast implements the client-facing WebSocket hot-reload
// transport (C5): the wire message types, the connection registry, and
// the per-connection read/write goroutines.
package broadcast

import (
	"encoding/json"

	"github.com/tola-rs/tola/internal/vdom"
)

// ProtocolVersion is reported in the "connected" message so a client can
// detect a server restart mid-session.
const ProtocolVersion = "1"

// MessageType is the wire discriminator tag.
type MessageType string

const (
	TypeReload     MessageType = "reload"
	TypePatch      MessageType = "patch"
	TypeError      MessageType = "error"
	TypeClearError MessageType = "clear_error"
	TypeConnected  MessageType = "connected"
	TypePing       MessageType = "ping"
	TypePong       MessageType = "pong"
)

// WirePatchOp is the JSON shape of one vdom.PatchOp.
type WirePatchOp struct {
	Op     string            `json:"op"`
	ID     string            `json:"id"`
	Anchor *WireAnchor       `json:"anchor,omitempty"`
	Text   string            `json:"text,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	HTML   string            `json:"html,omitempty"`
}

// WireAnchor is the JSON shape of a vdom.Anchor.
type WireAnchor struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// Message is the tagged-union envelope sent to every connected client.
type Message struct {
	Type    MessageType   `json:"type"`
	Reason  string        `json:"reason,omitempty"`
	Patches []WirePatchOp `json:"patches,omitempty"`
	Error   string        `json:"error,omitempty"`
	Path    string        `json:"path,omitempty"`
	Version string        `json:"version,omitempty"`
}

func opName(k vdom.PatchOpKind) string {
	switch k {
	case vdom.OpReplace:
		return "replace"
	case vdom.OpText:
		return "text"
	case vdom.OpAttr:
		return "attr"
	case vdom.OpInsert:
		return "insert"
	case vdom.OpMove:
		return "move"
	default:
		return "remove"
	}
}

func stableIDString(id vdom.StableID) string {
	return formatUint(uint64(id))
}

func formatUint(v uint64) string {
	if v == 0 {
		return "0"
	}
	const digits = "0123456789abcdef"
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// FromPatches converts an internal patch list into the wire shape.
func FromPatches(path string, patches []vdom.PatchOp) Message {
	out := make([]WirePatchOp, 0, len(patches))
	for _, p := range patches {
		wp := WirePatchOp{Op: opName(p.Kind), ID: stableIDString(p.ID), Text: p.Text, Attrs: p.Attrs}
		if len(p.HTML) > 0 {
			wp.HTML = string(p.HTML)
		}
		if p.Anchor != nil {
			wp.Anchor = &WireAnchor{Kind: p.Anchor.Kind.String(), Target: stableIDString(p.Anchor.Target)}
		}
		out = append(out, wp)
	}
	return Message{Type: TypePatch, Path: path, Patches: out}
}

// Reload builds a bare reload message.
func Reload(path string) Message { return Message{Type: TypeReload, Path: path} }

// ReloadWithReason builds a reload message carrying the bail-out reason
// (e.g. "head changed", "edit budget exceeded").
func ReloadWithReason(path, reason string) Message {
	return Message{Type: TypeReload, Path: path, Reason: reason}
}

// NewError builds an error message.
func NewError(path, err string) Message {
	return Message{Type: TypeError, Path: path, Error: err}
}

// ClearError builds a clear_error message for a path whose compile now
// succeeds.
func ClearError(path string) Message { return Message{Type: TypeClearError, Path: path} }

// Connected builds the initial handshake message.
func Connected() Message { return Message{Type: TypeConnected, Version: ProtocolVersion} }

// Ping builds a keepalive ping.
func Ping() Message { return Message{Type: TypePing} }

// ToJSON marshals m.
func (m Message) ToJSON() ([]byte, error) { return json.Marshal(m) }

// FromJSON unmarshals a client route-report or pong message.
func FromJSON(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
