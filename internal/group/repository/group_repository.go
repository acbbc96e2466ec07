package repository

import (
	"context"
	"net/url"
	"strconv"

	"edu_social_client/internal/group/domain"
	"edu_social_client/pkg/httpclient"

	"github.com/gofiber/fiber/v2"
)

const (
	groupsPath     = "/api/groups"
	statisticsPath = "/api/v1/groups/statistics/groups"
	studentsPath   = "/api/students"
)

// GroupRepository group backend
type GroupRepository interface {
	CreateGroup(ctx context.Context, req domain.CreateGroupRequest) (domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)
	GetGroup(ctx context.Context, id int64) (domain.Group, error)
	UpdateGroup(ctx context.Context, id int64, req domain.CreateGroupRequest) (domain.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	ArchiveGroup(ctx context.Context, id int64) (domain.Group, error)
	SearchGroups(ctx context.Context, req domain.SearchRequest) ([]domain.Group, error)

	AddMember(ctx context.Context, groupID int64, req domain.AddMemberRequest) (domain.Member, error)
	ListMembers(ctx context.Context, groupID int64) ([]domain.Member, error)
	RemoveMember(ctx context.Context, groupID int64, userID string) error
	MakeCoAdmin(ctx context.Context, groupID int64, userID string) error

	CreatePost(ctx context.Context, groupID int64, req domain.CreatePostRequest) (domain.Post, error)
	UploadFile(ctx context.Context, groupID int64, fileName string, data []byte, content string) (domain.Post, error)
	ListPosts(ctx context.Context, groupID int64) ([]domain.Post, error)
	DownloadFile(ctx context.Context, groupID, postID int64) ([]byte, error)
	DeletePost(ctx context.Context, groupID, postID int64) error

	Statistics(ctx context.Context) (domain.Statistics, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type groupRepository struct {
	client *httpclient.Client
}

// NewGroupRepository create GroupRepository over REST
func NewGroupRepository(client *httpclient.Client) GroupRepository {
	return &groupRepository{client: client}
}

func groupPath(id int64) string {
	return groupsPath + "/" + strconv.FormatInt(id, 10)
}

func memberPath(groupID int64) string {
	return "/api/v1/groups/" + strconv.FormatInt(groupID, 10) + "/members"
}

func postPath(groupID int64) string {
	return groupPath(groupID) + "/posts"
}

func (r *groupRepository) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) (domain.Group, error) {
	var g domain.Group
	err := r.client.Post(ctx, groupsPath, nil, req, &g)
	return g, err
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.client.Get(ctx, groupsPath, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.client.Get(ctx, groupsPath+"/user/"+url.PathEscape(userID), nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetGroup(ctx context.Context, id int64) (domain.Group, error) {
	var g domain.Group
	err := r.client.Get(ctx, groupPath(id), nil, &g)
	return g, err
}

func (r *groupRepository) UpdateGroup(ctx context.Context, id int64, req domain.CreateGroupRequest) (domain.Group, error) {
	var g domain.Group
	err := r.client.Put(ctx, groupPath(id), nil, req, &g)
	return g, err
}

func (r *groupRepository) DeleteGroup(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, groupPath(id), nil)
}

func (r *groupRepository) ArchiveGroup(ctx context.Context, id int64) (domain.Group, error) {
	var g domain.Group
	err := r.client.Put(ctx, groupPath(id)+"/archive", nil, nil, &g)
	return g, err
}

func (r *groupRepository) SearchGroups(ctx context.Context, req domain.SearchRequest) ([]domain.Group, error) {
	var groups []domain.Group
	if err := r.client.Post(ctx, groupsPath+"/search", nil, req, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID int64, req domain.AddMemberRequest) (domain.Member, error) {
	var m domain.Member
	err := r.client.Post(ctx, memberPath(groupID), nil, req, &m)
	return m, err
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID int64) ([]domain.Member, error) {
	var members []domain.Member
	if err := r.client.Get(ctx, memberPath(groupID), nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID int64, userID string) error {
	return r.client.Delete(ctx, memberPath(groupID)+"/"+url.PathEscape(userID), nil)
}

func (r *groupRepository) MakeCoAdmin(ctx context.Context, groupID int64, userID string) error {
	return r.client.Post(ctx, memberPath(groupID)+"/"+url.PathEscape(userID)+"/co-admin", nil, nil, nil)
}

func (r *groupRepository) CreatePost(ctx context.Context, groupID int64, req domain.CreatePostRequest) (domain.Post, error) {
	var p domain.Post
	err := r.client.Post(ctx, postPath(groupID), nil, req, &p)
	return p, err
}

func (r *groupRepository) UploadFile(ctx context.Context, groupID int64, fileName string, data []byte, content string) (domain.Post, error) {
	var p domain.Post
	err := r.client.Do(ctx, httpclient.Request{
		Method: fiber.MethodPost,
		Path:   postPath(groupID) + "/upload",
		Form:   map[string]string{"content": content},
		Files:  []httpclient.File{{Field: "file", Name: fileName, Content: data}},
	}, &p)
	return p, err
}

func (r *groupRepository) ListPosts(ctx context.Context, groupID int64) ([]domain.Post, error) {
	var posts []domain.Post
	if err := r.client.Get(ctx, postPath(groupID), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *groupRepository) DownloadFile(ctx context.Context, groupID, postID int64) ([]byte, error) {
	return r.client.Bytes(ctx, httpclient.Request{
		Method: fiber.MethodGet,
		Path:   postPath(groupID) + "/" + strconv.FormatInt(postID, 10) + "/download",
	})
}

func (r *groupRepository) DeletePost(ctx context.Context, groupID, postID int64) error {
	return r.client.Delete(ctx, postPath(groupID)+"/"+strconv.FormatInt(postID, 10), nil)
}

func (r *groupRepository) Statistics(ctx context.Context) (domain.Statistics, error) {
	var s domain.Statistics
	err := r.client.Get(ctx, statisticsPath, nil, &s)
	return s, err
}

func (r *groupRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.client.Get(ctx, studentsPath, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
