package netio

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Opcode tags which request/event variant an Envelope carries. Go has no
// wire-level tagged union, so — matching the teacher's own packet opcode
// convention in internal/net/packet — one opcode byte selects which of
// Envelope's payload fields is populated. Opcode values are purely a Go
// map key (Dispatcher.handlers needs one key per payload discriminant,
// even where spec.md's stream table collapses two opcodes onto the same
// stream); Stream reports the fixed, stable wire stream id each opcode
// belongs to — see spec.md §4.H. Streams 1/2 (GetAllMaps/AllMaps) have
// no Opcode entries: they run over the separate TCP bulk channel in
// bulk.go, never through an Envelope.
type Opcode uint8

const (
	OpPlayerJoin Opcode = iota
	OpPlayerLogout
	OpUpdateVelocity
	OpPickupItem
	OpDropItem
	OpStatUp
	OpPlayerJoined        // server -> client: reconstituted/fresh player, stream 11
	OpPlayerAlreadyOnline // server -> client: join rejected, stream 14
	OpChangeMap           // server -> client: MapExit-triggered teleport notice, stream 15
	OpPositionUpdate      // server -> client: one player's own position, stream 20
	OpStatsUpdate         // server -> client: one player's own stats, stream 21
	OpEntityUpdate        // server -> client: another entity's live snapshot, stream 22
	OpSystemMessage       // stream 23
	OpInventoryUpdate     // server -> client: one player's own inventory, stream 24
	OpDeadEntity          // server -> client: despawn via <map>Dead sentinel, stream 25
	OpLogoutBroadcast     // server -> client: a player went offline, stream 26
	OpError
)

// Stream reports the spec.md §4.H wire stream id op belongs to, or 0 if
// op carries no fixed stream (OpError, a purely local/diagnostic opcode).
func (op Opcode) Stream() int {
	switch op {
	case OpUpdateVelocity:
		return 10
	case OpPlayerJoin, OpPlayerJoined:
		return 11
	case OpPickupItem:
		return 12
	case OpDropItem, OpStatUp:
		return 13
	case OpPlayerAlreadyOnline:
		return 14
	case OpChangeMap:
		return 15
	case OpPositionUpdate:
		return 20
	case OpStatsUpdate:
		return 21
	case OpEntityUpdate:
		return 22
	case OpSystemMessage:
		return 23
	case OpInventoryUpdate:
		return 24
	case OpDeadEntity:
		return 25
	case OpPlayerLogout, OpLogoutBroadcast:
		return 26
	default:
		return 0
	}
}

// Envelope is the single wire type gob encodes/decodes for every UDP
// packet. No dedicated binary game-packet codec exists anywhere in the
// example pack to ground a bespoke format on, so this uses
// encoding/gob — see DESIGN.md for the standard-library justification.
type Envelope struct {
	Op  Opcode
	Seq uint64 // monotonic per-connection counter; used for sequenced-drop on unreliable opcodes

	PlayerJoin          *PlayerJoinMsg          `gob:",omitempty"`
	PlayerAlreadyOnline *PlayerAlreadyOnlineMsg `gob:",omitempty"`
	UpdateVelocity      *UpdateVelocityMsg      `gob:",omitempty"`
	PickupItem          *PickupItemMsg          `gob:",omitempty"`
	DropItem            *DropItemMsg            `gob:",omitempty"`
	StatUp              *StatUpMsg              `gob:",omitempty"`
	ChangeMap           *ChangeMapMsg           `gob:",omitempty"`
	StateUpdate         *StateUpdateMsg         `gob:",omitempty"`
	DeadEntity          *DeadEntityMsg          `gob:",omitempty"`
	SystemMessage       *SystemMessageMsg       `gob:",omitempty"`
	Error               *ErrorMsg               `gob:",omitempty"`
}

type PlayerJoinMsg struct{ Name string }

// PlayerAlreadyOnlineMsg rejects a PlayerJoin whose name is already bound
// to a connected session — spec.md §4.I.
type PlayerAlreadyOnlineMsg struct{ Name string }

type UpdateVelocityMsg struct{ VelX, VelY int8 }
type PickupItemMsg struct{ ItemID string }
type DropItemMsg struct{ ItemID string }
type StatUpMsg struct{ Stat string } // "str" | "dex" | "con"

// ChangeMapMsg is server -> client only: notice of an automatic map exit
// MapExit already validated and applied server-side. Clients never send
// this; a client-supplied map/x/y would bypass MapExit's exit-tile check,
// so the Request Dispatcher has no handler for it (the same reason
// UpdateVelocity carries no client-supplied position).
type ChangeMapMsg struct {
	Map  string
	X, Y int
}

// StateUpdateMsg carries one entity's broadcastable snapshot. It's reused
// across OpPositionUpdate/OpStatsUpdate/OpEntityUpdate/OpInventoryUpdate;
// each opcode populates only the fields its stream needs and leaves the
// rest zero.
type StateUpdateMsg struct {
	EntityID         uint64
	Map              string
	X, Y             int
	Glyph            rune
	Colour           int
	Level, HP, MaxHP int
	Exp              int64
	Gold             int64
	Name             string
}

type DeadEntityMsg struct {
	EntityID uint64
	Map      string
}

type SystemMessageMsg struct {
	Text   string
	Colour int
}

type ErrorMsg struct{ Reason string }

func Encode(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("netio: encode envelope: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("netio: decode envelope: %w", err)
	}
	return env, nil
}
