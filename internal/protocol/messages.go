package protocol // wire format shared by the arena server and its clients

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the `type` discriminator carried by every frame
type MessageType string

const (
	// Client -> Server
	MsgUpdate         MessageType = "update"
	MsgShoot          MessageType = "shoot"
	MsgChat           MessageType = "chat"
	MsgRespawnRequest MessageType = "respawnRequest"

	// Server -> Client
	MsgInit          MessageType = "init" // only to the joining connection
	MsgPlayerJoined  MessageType = "playerJoined"
	MsgPlayerUpdated MessageType = "playerUpdated"
	MsgBulletFired   MessageType = "bulletFired"
	MsgChatMessage   MessageType = "chatMessage"
	MsgPlayerHit     MessageType = "playerHit"
	MsgPlayerRespawn MessageType = "playerRespawn"
	MsgPlayerLeft    MessageType = "playerLeft"
)

var (
	ErrEmptyMessage = errors.New("protocol: empty message")
	ErrUnknownType  = errors.New("protocol: unknown message type")
	ErrMissingField = errors.New("protocol: missing field")
)

// Envelope is anything that can be written as a frame.
type Envelope interface {
	EnvelopeType() MessageType
}

// Header is embedded by every frame so the type sits next to the payload
// fields in one flat JSON object.
type Header struct {
	Type MessageType `json:"type"`
}

func (h Header) EnvelopeType() MessageType { return h.Type }

// Message is a decoded inbound frame. Raw keeps the full frame for
// DecodePayload.
type Message struct {
	Type MessageType     `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// Player is the wire form of a participant.
type Player struct {
	ID         string  `json:"id"`
	Nickname   string  `json:"nickname"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Angle      float64 `json:"angle"`
	Lives      int     `json:"lives"`
	IsAlive    bool    `json:"isAlive"`
	Respawning bool    `json:"respawning"`
}

// Bullet is the wire form of a projectile. CreatedAt is unix millis, TTL is millis.
type Bullet struct {
	ID        int64   `json:"id"`
	PlayerID  string  `json:"playerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
	Speed     float64 `json:"speed"`
	Conflict  bool    `json:"conflict"`
	CreatedAt int64   `json:"createdAt"`
	TTL       int64   `json:"ttl"`
}

// GameState is the full snapshot pushed with init
type GameState struct {
	Players      map[string]Player `json:"players"`
	Bullets      []Bullet          `json:"bullets"`
	LastBulletID int64             `json:"lastBulletId"`
}

// PlayerUpdates lists the player fields a client may report. Absent fields
// are left untouched.
type PlayerUpdates struct {
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Angle *float64 `json:"angle,omitempty"`
}

// Empty reports whether no field is set.
func (u PlayerUpdates) Empty() bool {
	return u.X == nil && u.Y == nil && u.Angle == nil
}

//// CLIENT -> SERVER ////

type UpdatePayload struct {
	Header
	Updates *PlayerUpdates `json:"updates"`
}

type ShootPayload struct {
	Header
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Angle *float64 `json:"angle"`
}

type ChatPayload struct {
	Header
	Message *string `json:"message"`
}

type RespawnRequestPayload struct {
	Header
}

func (p UpdatePayload) Validate() error {
	if p.Updates == nil {
		return fmt.Errorf("%w: updates", ErrMissingField)
	}
	return nil
}

func (p ShootPayload) Validate() error {
	switch {
	case p.X == nil:
		return fmt.Errorf("%w: x", ErrMissingField)
	case p.Y == nil:
		return fmt.Errorf("%w: y", ErrMissingField)
	case p.Angle == nil:
		return fmt.Errorf("%w: angle", ErrMissingField)
	}
	return nil
}

func (p ChatPayload) Validate() error {
	if p.Message == nil {
		return fmt.Errorf("%w: message", ErrMissingField)
	}
	return nil
}

func NewUpdate(u PlayerUpdates) UpdatePayload {
	return UpdatePayload{Header: Header{MsgUpdate}, Updates: &u}
}

func NewShoot(x, y, angle float64) ShootPayload {
	return ShootPayload{Header: Header{MsgShoot}, X: &x, Y: &y, Angle: &angle}
}

func NewChat(message string) ChatPayload {
	return ChatPayload{Header: Header{MsgChat}, Message: &message}
}

func NewRespawnRequest() RespawnRequestPayload {
	return RespawnRequestPayload{Header: Header{MsgRespawnRequest}}
}

//// SERVER -> CLIENT ////

type InitEvent struct {
	Header
	PlayerID  string    `json:"playerId"`
	GameState GameState `json:"gameState"`
}

type PlayerJoinedEvent struct {
	Header
	Player Player `json:"player"`
}

type PlayerUpdatedEvent struct {
	Header
	PlayerID string        `json:"playerId"`
	Updates  PlayerUpdates `json:"updates"`
}

type BulletFiredEvent struct {
	Header
	Bullet Bullet `json:"bullet"`
}

type ChatMessageEvent struct {
	Header
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
}

// PlayerHitEvent is sent for every hit, lethal or not.
type PlayerHitEvent struct {
	Header
	PlayerID   string `json:"playerId"`
	Lives      int    `json:"lives"`
	IsAlive    bool   `json:"isAlive"`
	Respawning bool   `json:"respawning"`
	BulletID   int64  `json:"bulletId"`
	ShooterID  string `json:"shooterId"`
}

// PlayerRespawnEvent carries the respawned player's new state alongside its id.
type PlayerRespawnEvent struct {
	Header
	PlayerID string `json:"playerId"`
	Player   Player `json:"player"`
}

type PlayerLeftEvent struct {
	Header
	PlayerID string `json:"playerId"`
}

func NewInit(playerID string, state GameState) InitEvent {
	return InitEvent{Header: Header{MsgInit}, PlayerID: playerID, GameState: state}
}

func NewPlayerJoined(p Player) PlayerJoinedEvent {
	return PlayerJoinedEvent{Header: Header{MsgPlayerJoined}, Player: p}
}

func NewPlayerUpdated(playerID string, u PlayerUpdates) PlayerUpdatedEvent {
	return PlayerUpdatedEvent{Header: Header{MsgPlayerUpdated}, PlayerID: playerID, Updates: u}
}

func NewBulletFired(b Bullet) BulletFiredEvent {
	return BulletFiredEvent{Header: Header{MsgBulletFired}, Bullet: b}
}

func NewChatMessage(playerID, nickname, message string) ChatMessageEvent {
	return ChatMessageEvent{Header: Header{MsgChatMessage}, PlayerID: playerID, Nickname: nickname, Message: message}
}

func NewPlayerHit(p Player, bulletID int64, shooterID string) PlayerHitEvent {
	return PlayerHitEvent{
		Header:     Header{MsgPlayerHit},
		PlayerID:   p.ID,
		Lives:      p.Lives,
		IsAlive:    p.IsAlive,
		Respawning: p.Respawning,
		BulletID:   bulletID,
		ShooterID:  shooterID,
	}
}

func NewPlayerRespawn(p Player) PlayerRespawnEvent {
	return PlayerRespawnEvent{Header: Header{MsgPlayerRespawn}, PlayerID: p.ID, Player: p}
}

func NewPlayerLeft(playerID string) PlayerLeftEvent {
	return PlayerLeftEvent{Header: Header{MsgPlayerLeft}, PlayerID: playerID}
}

// EncodeMessage serializes a frame
func EncodeMessage(env Envelope) ([]byte, error) {
	if env == nil || env.EnvelopeType() == "" {
		return nil, fmt.Errorf("encode: %w: type", ErrMissingField)
	}
	return json.Marshal(env)
}

// DecodeMessage reads the type of an inbound frame. The payload is decoded
// later with DecodePayload once the type is known.
func DecodeMessage(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("decode envelope: %w: type", ErrMissingField)
	}
	msg.Raw = append(json.RawMessage(nil), data...)
	return &msg, nil
}

// DecodePayload decodes the frame into T.
func DecodePayload[T any](msg *Message) (T, error) {
	var out T
	if msg == nil || len(msg.Raw) == 0 {
		return out, ErrEmptyMessage
	}
	if err := json.Unmarshal(msg.Raw, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return out, nil
}
