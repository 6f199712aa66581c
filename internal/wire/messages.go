package wire

import (
	"encoding/json"
	"fmt"
)

// Topic names a broadcast channel on the bus.
type Topic string

// Topics carried between driver and animator.
const (
	TopicScrollProposal  Topic = "scroll-proposal"
	TopicAuthorityStatus Topic = "authority-status"
	TopicGeometryUpdate  Topic = "geometry-update"
)

// Event types carried in ScrollProposal.EvType.
const (
	EvWheel = "wheel"
	EvTouch = "touchmove"
	EvDrag  = "drag"
	EvClick = "click"
)

// ScrollProposal is a candidate scroll delta sent from the driver for
// authority arbitration. ScrollTop is the driver position at the moment of
// proposing; the target position is ScrollTop + DeltaY.
type ScrollProposal struct {
	Seq       int64  `json:"seq"`
	EvType    string `json:"evType"`
	DeltaY    int64  `json:"deltaY"`
	ScrollTop int64  `json:"scrollTop"`
}

// AuthorityStatus is the animator's reply to a proposal.
// InReplyTo echoes the proposal's Seq; zero marks an unsolicited status.
type AuthorityStatus struct {
	BlockedStatus    Phase  `json:"blockedStatus"`
	BlockerElementID string `json:"blockerElementId,omitempty"`
	InReplyTo        int64  `json:"inReplyTo"`
}

// GeometryUpdate tells the driver where the animation window sits and how
// much virtual scroll room the animation consumes.
//
// Started marks the announcement a deck makes when it starts, in phase
// before. It bounds one run in an appended message log.
type GeometryUpdate struct {
	ExtraPageHeight  int64 `json:"extraPageHeight"`
	OffsetTopBlocker int64 `json:"offsetTopBlocker"`
	FreeScrolling    bool  `json:"freeScrolling"`
	Started          bool  `json:"started,omitempty"`
}

// Encode produces the canonical payload for a proposal.
func (p ScrollProposal) Encode() ([]byte, error) {
	return MarshalCanonical(map[string]any{
		"seq":       p.Seq,
		"evType":    p.EvType,
		"deltaY":    p.DeltaY,
		"scrollTop": p.ScrollTop,
	})
}

// Encode produces the canonical payload for a status.
func (s AuthorityStatus) Encode() ([]byte, error) {
	if !s.BlockedStatus.Valid() {
		return nil, fmt.Errorf("encode authority status: invalid phase %d", int(s.BlockedStatus))
	}
	obj := map[string]any{
		"blockedStatus": int64(s.BlockedStatus),
		"inReplyTo":     s.InReplyTo,
	}
	if s.BlockerElementID != "" {
		obj["blockerElementId"] = s.BlockerElementID
	}
	return MarshalCanonical(obj)
}

// Encode produces the canonical payload for a geometry update.
func (g GeometryUpdate) Encode() ([]byte, error) {
	obj := map[string]any{
		"extraPageHeight":  g.ExtraPageHeight,
		"offsetTopBlocker": g.OffsetTopBlocker,
		"freeScrolling":    g.FreeScrolling,
	}
	if g.Started {
		obj["started"] = true
	}
	return MarshalCanonical(obj)
}

// DecodeProposal parses a scroll-proposal payload.
func DecodeProposal(data []byte) (ScrollProposal, error) {
	var p ScrollProposal
	if err := json.Unmarshal(data, &p); err != nil {
		return ScrollProposal{}, fmt.Errorf("decode scroll proposal: %w", err)
	}
	if p.EvType == "" {
		return ScrollProposal{}, fmt.Errorf("decode scroll proposal: evType is required")
	}
	return p, nil
}

// DecodeStatus parses an authority-status payload.
func DecodeStatus(data []byte) (AuthorityStatus, error) {
	var s AuthorityStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return AuthorityStatus{}, fmt.Errorf("decode authority status: %w", err)
	}
	if !s.BlockedStatus.Valid() {
		return AuthorityStatus{}, fmt.Errorf("decode authority status: invalid phase %d", int(s.BlockedStatus))
	}
	return s, nil
}

// DecodeGeometry parses a geometry-update payload.
func DecodeGeometry(data []byte) (GeometryUpdate, error) {
	var g GeometryUpdate
	if err := json.Unmarshal(data, &g); err != nil {
		return GeometryUpdate{}, fmt.Errorf("decode geometry update: %w", err)
	}
	if g.ExtraPageHeight < 0 {
		return GeometryUpdate{}, fmt.Errorf("decode geometry update: negative extraPageHeight %d", g.ExtraPageHeight)
	}
	return g, nil
}
