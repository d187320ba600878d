package game

// View projects a snapshot for one viewer. Seat tokens are stripped, other
// participants' roles and targets are hidden and narration is filtered by
// channel. In RESULT every role is revealed. Unknown viewers see only public
// information.
func View(s *RoomState, viewerID string, catalog *Catalog) *RoomState {
	out := s.Clone()
	out.PasscodeHash = ""

	viewer, seated := s.Participant(viewerID)
	var viewerRole *Role
	if seated {
		viewerRole, _ = catalog.Lookup(viewer.RoleID)
	}
	if !seated || !viewer.Host {
		out.Passcode = ""
	}

	for i := range out.Participants {
		p := &out.Participants[i]
		p.SeatToken = ""
		if p.ID == viewerID {
			continue
		}
		p.NightTarget = ""
		p.VoteTarget = ""
		if s.Phase == PhaseResult {
			continue
		}
		peer := viewerRole != nil && viewerRole.KnowsPeers && p.RoleID == viewer.RoleID
		if !peer {
			p.RoleID = ""
		}
	}

	visible := out.Narration[:0]
	for _, entry := range out.Narration {
		if canRead(entry, s.Phase, viewer, viewerRole) {
			visible = append(visible, entry)
		}
	}
	out.Narration = visible

	return out
}

func canRead(entry NarrationEntry, phase Phase, viewer *Participant, role *Role) bool {
	switch entry.Channel {
	case ChannelPublic:
		return true
	case ChannelDeadOnly:
		return viewer != nil && (!viewer.Alive || phase == PhaseResult)
	case ChannelWolfOnly:
		return viewer != nil && viewer.Alive && role != nil && role.WolfChat()
	case ChannelPrivate:
		return viewer != nil && (entry.Recipient == viewer.ID || entry.Sender == viewer.ID)
	}
	return false
}
