package domain

import "edu_social_client/pkg/jsontime"

// Member 群組成員
type Member struct {
	ID          int64         `json:"id"`
	GroupID     int64         `json:"groupId"`
	UserID      string        `json:"userId"`
	Admin       bool          `json:"admin"`
	CoAdmin     bool          `json:"coAdmin"`
	Status      string        `json:"status"`
	CreatedBy   string        `json:"createdBy"`
	CreatedDate jsontime.Time `json:"createdDate"`
}

// AddMemberRequest add member body
type AddMemberRequest struct {
	UserID  string `json:"userId"`
	Admin   bool   `json:"admin"`
	CoAdmin bool   `json:"coAdmin"`
}

// FindMember member with userID
func FindMember(members []Member, userID string) (Member, bool) {
	for _, m := range members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}
