package app

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"edu_social_client/internal/group/domain"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"

	"go.uber.org/zap"
)

// groupRef id of a push payload, number or quoted string
type groupRef struct {
	GroupID json.RawMessage `json:"groupId"`
	ID      json.RawMessage `json:"id"`
}

func parseID(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		id, err := n.Int64()
		return id, err == nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

// HandleGroupUpdate merge a /topic/group-updates payload into the held group
func (c *GroupController) HandleGroupUpdate(_ context.Context, body []byte) error {
	var ref groupRef
	if err := json.Unmarshal(body, &ref); err != nil {
		return errprocess.Wrap(errprocess.ErrMalformed, "decode group update", err)
	}
	groupID, ok := parseID(ref.GroupID)
	if !ok {
		groupID, ok = parseID(ref.ID)
	}
	if !ok {
		return errprocess.Wrap(errprocess.ErrMalformed, "group update without id", nil)
	}

	c.mu.Lock()
	i := c.groupIndexLocked(groupID)
	if i < 0 {
		c.mu.Unlock()
		logger.Log.Debug("update for unknown group ignored", zap.Int64("group_id", groupID))
		return nil
	}
	merged := c.groups[i]
	if err := json.Unmarshal(body, &merged); err != nil {
		c.mu.Unlock()
		return errprocess.Wrap(errprocess.ErrMalformed, "merge group update", err)
	}
	merged.ID = groupID
	c.groups[i] = merged
	c.mu.Unlock()
	c.changed()
	return nil
}

// HandleGroupPost prepend a /topic/group-posts payload when it belongs to the selected group
func (c *GroupController) HandleGroupPost(_ context.Context, body []byte) error {
	var p domain.Post
	if err := json.Unmarshal(body, &p); err != nil {
		return errprocess.Wrap(errprocess.ErrMalformed, "decode group post", err)
	}
	if p.GroupID == 0 {
		return errprocess.Wrap(errprocess.ErrMalformed, "group post without groupId", nil)
	}
	if p.GroupID != c.SelectedID() {
		return nil
	}
	c.posts.Mutate(func(items []domain.Post) ([]domain.Post, bool) {
		for _, held := range items {
			if p.ID != 0 && held.ID == p.ID {
				return items, false
			}
		}
		return append([]domain.Post{p}, items...), true
	})
	return nil
}
