package domain

import "edu_social_client/pkg/jsontime"

// Group 學習群組
type Group struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Subject     string        `json:"subject"`
	Archived    bool          `json:"archived"`
	MemberCount int64         `json:"memberCount"`
	CreatedBy   string        `json:"createdBy"`
	CreatedDate jsontime.Time `json:"createdDate"`
}

// CreateGroupRequest create/update body
type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
}

// SearchRequest POST /api/groups/search body, nil fields are not filtered
type SearchRequest struct {
	TeacherID string `json:"teacherId,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Archived  *bool  `json:"archived,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
}

// Statistics group statistics overview
type Statistics struct {
	TotalGroups                 int64   `json:"totalGroups"`
	ActiveGroups                int64   `json:"activeGroups"`
	ArchivedGroups              int64   `json:"archivedGroups"`
	TotalMembers                int64   `json:"totalMembers"`
	AverageMembersPerGroup      float64 `json:"averageMembersPerGroup"`
	MostPopularGroupMemberCount int64   `json:"mostPopularGroupMemberCount"`
	MostPopularGroupName        string  `json:"mostPopularGroupName"`
}

// User member candidate
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
