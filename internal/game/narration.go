package game

import "time"

// SystemSender identifies narration written by the game itself
const SystemSender = "system"

// Channel controls who may read a narration entry
type Channel string

const (
	ChannelPublic   Channel = "PUBLIC"
	ChannelDeadOnly Channel = "DEAD_ONLY"
	ChannelWolfOnly Channel = "WOLF_ONLY"
	ChannelPrivate  Channel = "PRIVATE"
)

// NarrationEntry is one append-only line of the room log
type NarrationEntry struct {
	ID        string    `json:"id"`
	Sender    string    `json:"senderId"`
	Recipient string    `json:"recipientId,omitempty"`
	Channel   Channel   `json:"channel"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
