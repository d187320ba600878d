package views

import (
	"strings"

	"nightfall/internal/game"
)

// Names maps participant ids to display names
func Names(participants []game.Participant) map[string]string {
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names
}

func channelClass(c game.Channel) string {
	return "channel-" + strings.ReplaceAll(strings.ToLower(string(c)), "_", "-")
}

// senderName falls back to the game master for system and departed senders
func senderName(entry game.NarrationEntry, names map[string]string) string {
	if entry.Sender == game.SystemSender || names[entry.Sender] == "" {
		return "GM"
	}
	return names[entry.Sender]
}

func textLines(text string) []string {
	return strings.Split(text, "\n")
}

// roleName is empty when the role was hidden from the viewer
func roleName(catalog *game.Catalog, roleID string) string {
	if roleID == "" || catalog == nil {
		return ""
	}
	role, err := catalog.Lookup(roleID)
	if err != nil {
		return ""
	}
	return role.Name
}
