package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMessageConstants(t *testing.T) {
	cases := map[MessageType]string{
		MsgUpdate:         "update",
		MsgShoot:          "shoot",
		MsgChat:           "chat",
		MsgRespawnRequest: "respawnRequest",
		MsgInit:           "init",
		MsgPlayerJoined:   "playerJoined",
		MsgPlayerUpdated:  "playerUpdated",
		MsgBulletFired:    "bulletFired",
		MsgChatMessage:    "chatMessage",
		MsgPlayerHit:      "playerHit",
		MsgPlayerRespawn:  "playerRespawn",
		MsgPlayerLeft:     "playerLeft",
	}
	for got, want := range cases {
		if string(got) != want {
			t.Fatalf("message type = %q, want %q", got, want)
		}
	}
}

func TestEncodeMessageIsFlat(t *testing.T) {
	b, err := EncodeMessage(NewPlayerLeft("p1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["type"] != "playerLeft" || raw["playerId"] != "p1" {
		t.Fatalf("unexpected frame %s", b)
	}
	if _, nested := raw["payload"]; nested {
		t.Fatalf("frame should not nest a payload: %s", b)
	}
}

func TestEncodeMessageRejectsUntyped(t *testing.T) {
	if _, err := EncodeMessage(PlayerLeftEvent{PlayerID: "p1"}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestDecodeShoot(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"shoot","x":100,"y":120.5,"angle":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != MsgShoot {
		t.Fatalf("type = %q", msg.Type)
	}
	p, err := DecodePayload[ShootPayload](msg)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if *p.X != 100 || *p.Y != 120.5 || *p.Angle != 0 {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", ``, ErrEmptyMessage},
		{"no type", `{"x":1}`, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMessage([]byte(tt.in)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := DecodeMessage([]byte(`{not json`)); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestValidateMissingFields(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"shoot","x":1,"angle":2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, err := DecodePayload[ShootPayload](msg)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if err := p.Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}

	if err := (ChatPayload{}).Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("chat err = %v", err)
	}
	if err := (UpdatePayload{}).Validate(); !errors.Is(err, ErrMissingField) {
		t.Fatalf("update err = %v", err)
	}
}

func TestUpdatesOmitAbsentFields(t *testing.T) {
	x := 5.0
	b, err := EncodeMessage(NewPlayerUpdated("p1", PlayerUpdates{X: &x}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"type":"playerUpdated","playerId":"p1","updates":{"x":5}}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
	if !(PlayerUpdates{}).Empty() {
		t.Fatalf("zero updates should be empty")
	}
}
