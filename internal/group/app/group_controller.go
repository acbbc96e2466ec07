package app

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"edu_social_client/internal/feed"
	"edu_social_client/internal/group/domain"
	"edu_social_client/internal/group/repository"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"
	"edu_social_client/pkg/token"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ViewGroups change hook name of the groups page
const ViewGroups = "groups"

// Identity current session user
type Identity interface {
	UserID() string
	RequireUser() (string, error)
	HasRole(role token.RoleType) bool
}

// Snapshot groups page state
type Snapshot struct {
	Groups     []domain.Group          `json:"groups"`
	SelectedID int64                   `json:"selectedGroupId"`
	Members    []domain.Member         `json:"members"`
	Posts      feed.State[domain.Post] `json:"posts"`
}

// GroupController 群組列表, 目前選取群組的貼文與成員
type GroupController struct {
	repo     repository.GroupRepository
	identity Identity
	posts    *feed.Controller[domain.Post]
	pageSize int
	maxBytes int64
	onChange func(view string)

	mu       sync.Mutex
	groups   []domain.Group
	selected int64
	members  []domain.Member
}

// Option GroupController option
type Option func(*GroupController)

// WithPageSize posts per page of the selected group
func WithPageSize(size int) Option {
	return func(c *GroupController) { c.pageSize = size }
}

// WithMaxUploadBytes attachment ceiling
func WithMaxUploadBytes(n int64) Option {
	return func(c *GroupController) { c.maxBytes = n }
}

// WithChangeHook called after every committed state change
func WithChangeHook(fn func(view string)) Option {
	return func(c *GroupController) { c.onChange = fn }
}

// NewGroupController create GroupController
func NewGroupController(repo repository.GroupRepository, identity Identity, opts ...Option) *GroupController {
	c := &GroupController{
		repo:     repo,
		identity: identity,
		pageSize: 20,
		maxBytes: 1000 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.posts = feed.New[domain.Post]("group-posts", c.loadPosts,
		feed.WithPageSize[domain.Post](c.pageSize),
		feed.OnChange[domain.Post](c.changed),
	)
	return c
}

func (c *GroupController) changed() {
	if c.onChange != nil {
		c.onChange(ViewGroups)
	}
}

// loadPosts the backend returns the whole list, paging is applied locally
func (c *GroupController) loadPosts(ctx context.Context, view string, page, size int) (feed.Page[domain.Post], error) {
	groupID, err := strconv.ParseInt(view, 10, 64)
	if err != nil {
		return feed.Page[domain.Post]{}, errprocess.Validation("invalid group view " + view)
	}
	all, err := c.repo.ListPosts(ctx, groupID)
	if err != nil {
		return feed.Page[domain.Post]{}, err
	}
	start := min(page*size, len(all))
	end := min(start+size, len(all))
	return feed.NewPage(all[start:end], page, size, int64(len(all))), nil
}

// LoadGroups replace the group list, admins see every group
func (c *GroupController) LoadGroups(ctx context.Context) error {
	userID, err := c.identity.RequireUser()
	if err != nil {
		return err
	}
	var groups []domain.Group
	if c.identity.HasRole(token.RoleAdmin) {
		groups, err = c.repo.ListGroups(ctx)
	} else {
		groups, err = c.repo.ListGroupsForUser(ctx, userID)
	}
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "load groups", err)
	}
	c.mu.Lock()
	c.groups = groups
	c.mu.Unlock()
	c.changed()
	return nil
}

// Search groups matching req, the held list is not touched
func (c *GroupController) Search(ctx context.Context, req domain.SearchRequest) ([]domain.Group, error) {
	groups, err := c.repo.SearchGroups(ctx, req)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.ErrNetwork, "search groups", err)
	}
	return groups, nil
}

// SelectGroup load members and the first posts page of groupID
func (c *GroupController) SelectGroup(ctx context.Context, groupID int64) error {
	members, err := c.repo.ListMembers(ctx, groupID)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "load members", err)
	}
	if err := c.posts.LoadPage(ctx, strconv.FormatInt(groupID, 10), 0, c.pageSize); err != nil {
		if errors.Is(err, errprocess.ErrSuperseded) {
			return err
		}
		return errprocess.Wrap(errprocess.ErrNetwork, "load group posts", err)
	}
	c.mu.Lock()
	c.selected = groupID
	c.members = members
	c.mu.Unlock()
	c.changed()
	return nil
}

// NextPostsPage next page of the selected group posts
func (c *GroupController) NextPostsPage(ctx context.Context) error {
	return c.posts.NextPage(ctx)
}

// PreviousPostsPage previous page of the selected group posts
func (c *GroupController) PreviousPostsPage(ctx context.Context) error {
	return c.posts.PreviousPage(ctx)
}

// CreateGroup create a group and put it at the head of the list
func (c *GroupController) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) (domain.Group, error) {
	req = trimGroup(req)
	if req.Name == "" {
		return domain.Group{}, errprocess.Validation("group name is required")
	}
	g, err := c.repo.CreateGroup(ctx, req)
	if err != nil {
		return domain.Group{}, errprocess.Wrap(errprocess.ErrNetwork, "create group", err)
	}
	c.mu.Lock()
	c.groups = append([]domain.Group{g}, c.groups...)
	c.mu.Unlock()
	c.changed()
	return g, nil
}

// UpdateGroup rename or describe a group
func (c *GroupController) UpdateGroup(ctx context.Context, groupID int64, req domain.CreateGroupRequest) error {
	req = trimGroup(req)
	if req.Name == "" {
		return errprocess.Validation("group name is required")
	}
	if err := c.requireManage(groupID); err != nil {
		return err
	}
	g, err := c.repo.UpdateGroup(ctx, groupID, req)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "update group", err)
	}
	c.replaceGroup(groupID, func(old *domain.Group) {
		if g.ID == 0 {
			old.Name, old.Description, old.Subject = req.Name, req.Description, req.Subject
			return
		}
		*old = g
	})
	return nil
}

// ArchiveGroup archive a group
func (c *GroupController) ArchiveGroup(ctx context.Context, groupID int64) error {
	if err := c.requireManage(groupID); err != nil {
		return err
	}
	g, err := c.repo.ArchiveGroup(ctx, groupID)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "archive group", err)
	}
	c.replaceGroup(groupID, func(old *domain.Group) {
		if g.ID != 0 {
			*old = g
		}
		old.Archived = true
	})
	return nil
}

// DeleteGroup delete a group, the selection is cleared when it was selected
func (c *GroupController) DeleteGroup(ctx context.Context, groupID int64) error {
	if err := c.requireManage(groupID); err != nil {
		return err
	}
	if err := c.repo.DeleteGroup(ctx, groupID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "delete group", err)
	}
	c.mu.Lock()
	c.groups = slices.DeleteFunc(c.groups, func(g domain.Group) bool { return g.ID == groupID })
	wasSelected := c.selected == groupID
	if wasSelected {
		c.selected = 0
		c.members = nil
	}
	c.mu.Unlock()
	if wasSelected {
		c.posts.Mutate(func([]domain.Post) ([]domain.Post, bool) { return nil, true })
	}
	c.changed()
	return nil
}

// SendPost post text to the selected group
func (c *GroupController) SendPost(ctx context.Context, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	groupID := c.SelectedID()
	if groupID == 0 {
		return domain.Post{}, errprocess.Validation("no group selected")
	}
	if content == "" {
		return domain.Post{}, errprocess.Validation("post content is empty")
	}
	p, err := c.repo.CreatePost(ctx, groupID, domain.CreatePostRequest{Content: content, Type: domain.PostText})
	if err != nil {
		return domain.Post{}, errprocess.Wrap(errprocess.ErrNetwork, "create group post", err)
	}
	c.posts.Prepend(p)
	return p, nil
}

// UploadFile share a file with the selected group
func (c *GroupController) UploadFile(ctx context.Context, fileName string, data []byte, content string) (domain.Post, error) {
	groupID := c.SelectedID()
	if groupID == 0 {
		return domain.Post{}, errprocess.Validation("no group selected")
	}
	if len(data) == 0 {
		return domain.Post{}, errprocess.Validation("file is empty")
	}
	if int64(len(data)) > c.maxBytes {
		return domain.Post{}, errprocess.Validation("file exceeds size limit")
	}
	kind := domain.TypeForMIME(mimetype.Detect(data).String())
	if strings.TrimSpace(content) == "" {
		content = fileName
	}
	p, err := c.repo.UploadFile(ctx, groupID, fileName, data, content)
	if err != nil {
		return domain.Post{}, errprocess.Wrap(errprocess.ErrNetwork, "upload group file", err)
	}
	if p.Type == "" {
		p.Type = kind
	}
	if p.FileName == "" {
		p.FileName = fileName
	}
	c.posts.Prepend(p)
	return p, nil
}

// DeletePost delete a post of the selected group, author or group admins only
func (c *GroupController) DeletePost(ctx context.Context, postID int64) error {
	groupID := c.SelectedID()
	if groupID == 0 {
		return errprocess.Validation("no group selected")
	}
	post, held := c.findPost(postID)
	if held && post.UserID != c.identity.UserID() && !c.HasAdminPrivileges() {
		return errprocess.Wrap(errprocess.ErrForbidden, "delete group post", nil)
	}
	if err := c.repo.DeletePost(ctx, groupID, postID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "delete group post", err)
	}
	c.posts.Mutate(func(items []domain.Post) ([]domain.Post, bool) {
		n := len(items)
		items = slices.DeleteFunc(items, func(p domain.Post) bool { return p.ID == postID })
		return items, len(items) != n
	})
	return nil
}

// Download fetch the file of a post
func (c *GroupController) Download(ctx context.Context, postID int64) (domain.Download, error) {
	groupID := c.SelectedID()
	if groupID == 0 {
		return domain.Download{}, errprocess.Validation("no group selected")
	}
	data, err := c.repo.DownloadFile(ctx, groupID, postID)
	if err != nil {
		return domain.Download{}, errprocess.Wrap(errprocess.ErrNetwork, "download group file", err)
	}
	name := "file-" + strconv.FormatInt(postID, 10)
	if p, ok := c.findPost(postID); ok && p.FileName != "" {
		name = p.FileName
	}
	return domain.Download{FileName: name, ContentType: mimetype.Detect(data).String(), Data: data}, nil
}

// AddMembers add users to the selected group, existing members are skipped
func (c *GroupController) AddMembers(ctx context.Context, userIDs []string) error {
	groupID := c.SelectedID()
	if groupID == 0 {
		return errprocess.Validation("no group selected")
	}
	if !c.HasAdminPrivileges() {
		return errprocess.Wrap(errprocess.ErrForbidden, "add members", nil)
	}
	for _, id := range userIDs {
		c.mu.Lock()
		_, exists := domain.FindMember(c.members, id)
		c.mu.Unlock()
		if exists || id == "" {
			continue
		}
		m, err := c.repo.AddMember(ctx, groupID, domain.AddMemberRequest{UserID: id})
		if err != nil {
			return errprocess.Wrap(errprocess.ErrNetwork, "add member "+id, err)
		}
		if m.UserID == "" {
			m = domain.Member{GroupID: groupID, UserID: id}
		}
		c.mu.Lock()
		c.members = append(c.members, m)
		c.mu.Unlock()
		c.bumpMemberCount(groupID, 1)
	}
	c.changed()
	return nil
}

// AvailableUsers users that are not members of the selected group
func (c *GroupController) AvailableUsers(ctx context.Context) ([]domain.User, error) {
	if c.SelectedID() == 0 {
		return nil, nil
	}
	users, err := c.repo.ListUsers(ctx)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.ErrNetwork, "load users", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.DeleteFunc(users, func(u domain.User) bool {
		_, member := domain.FindMember(c.members, u.ID)
		return member
	}), nil
}

// RemoveMember remove a member of the selected group
func (c *GroupController) RemoveMember(ctx context.Context, userID string) error {
	groupID := c.SelectedID()
	if groupID == 0 {
		return errprocess.Validation("no group selected")
	}
	if userID == c.identity.UserID() {
		return errprocess.Validation("can not remove yourself")
	}
	if !c.HasAdminPrivileges() {
		return errprocess.Wrap(errprocess.ErrForbidden, "remove member", nil)
	}
	if err := c.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "remove member", err)
	}
	c.mu.Lock()
	n := len(c.members)
	c.members = slices.DeleteFunc(c.members, func(m domain.Member) bool { return m.UserID == userID })
	removed := n - len(c.members)
	c.mu.Unlock()
	c.bumpMemberCount(groupID, -int64(removed))
	c.changed()
	return nil
}

// MakeCoAdmin promote a member of the selected group, group admin only
func (c *GroupController) MakeCoAdmin(ctx context.Context, userID string) error {
	groupID := c.SelectedID()
	if groupID == 0 {
		return errprocess.Validation("no group selected")
	}
	if !c.IsCurrentUserAdmin() {
		return errprocess.Wrap(errprocess.ErrForbidden, "designate co-admin", nil)
	}
	if err := c.repo.MakeCoAdmin(ctx, groupID, userID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "designate co-admin", err)
	}
	c.mu.Lock()
	for i := range c.members {
		if c.members[i].UserID == userID {
			c.members[i].CoAdmin = true
		}
	}
	c.mu.Unlock()
	c.changed()
	return nil
}

// IsCurrentUserAdmin admin of the selected group
func (c *GroupController) IsCurrentUserAdmin() bool {
	m, ok := c.currentMember()
	return ok && m.Admin
}

// IsCurrentUserCoAdmin co-admin of the selected group
func (c *GroupController) IsCurrentUserCoAdmin() bool {
	m, ok := c.currentMember()
	return ok && m.CoAdmin
}

// HasAdminPrivileges admin or co-admin of the selected group
func (c *GroupController) HasAdminPrivileges() bool {
	m, ok := c.currentMember()
	return ok && (m.Admin || m.CoAdmin)
}

// Statistics group statistics overview
func (c *GroupController) Statistics(ctx context.Context) (domain.Statistics, error) {
	s, err := c.repo.Statistics(ctx)
	if err != nil {
		return domain.Statistics{}, errprocess.Wrap(errprocess.ErrNetwork, "load group statistics", err)
	}
	return s, nil
}

// SelectedID selected group, 0 when none
func (c *GroupController) SelectedID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Snapshot copy of the current state
func (c *GroupController) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		Groups:     append([]domain.Group(nil), c.groups...),
		SelectedID: c.selected,
		Members:    append([]domain.Member(nil), c.members...),
	}
	c.mu.Unlock()
	s.Posts = c.posts.State()
	return s
}

func (c *GroupController) currentMember() (domain.Member, bool) {
	userID := c.identity.UserID()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == 0 || userID == "" {
		return domain.Member{}, false
	}
	return domain.FindMember(c.members, userID)
}

// requireManage platform admins, the group creator and the selected group's admin
func (c *GroupController) requireManage(groupID int64) error {
	if c.identity.HasRole(token.RoleAdmin) {
		return nil
	}
	userID := c.identity.UserID()
	c.mu.Lock()
	i := c.groupIndexLocked(groupID)
	creator := i >= 0 && userID != "" && c.groups[i].CreatedBy == userID
	c.mu.Unlock()
	if creator {
		return nil
	}
	if c.SelectedID() == groupID && c.IsCurrentUserAdmin() {
		return nil
	}
	logger.Log.Warn("group action forbidden", zap.Int64("group_id", groupID), zap.String("user_id", userID))
	return errprocess.Wrap(errprocess.ErrForbidden, "manage group "+strconv.FormatInt(groupID, 10), nil)
}

func (c *GroupController) replaceGroup(groupID int64, fn func(g *domain.Group)) {
	c.mu.Lock()
	i := c.groupIndexLocked(groupID)
	if i >= 0 {
		fn(&c.groups[i])
	}
	c.mu.Unlock()
	if i >= 0 {
		c.changed()
	}
}

func (c *GroupController) bumpMemberCount(groupID, delta int64) {
	if delta == 0 {
		return
	}
	c.mu.Lock()
	if i := c.groupIndexLocked(groupID); i >= 0 {
		c.groups[i].MemberCount = max(0, c.groups[i].MemberCount+delta)
	}
	c.mu.Unlock()
}

func (c *GroupController) findPost(postID int64) (domain.Post, bool) {
	for _, p := range c.posts.Items() {
		if p.ID == postID {
			return p, true
		}
	}
	return domain.Post{}, false
}

func (c *GroupController) groupIndexLocked(groupID int64) int {
	return slices.IndexFunc(c.groups, func(g domain.Group) bool { return g.ID == groupID })
}

func trimGroup(req domain.CreateGroupRequest) domain.CreateGroupRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Subject = strings.TrimSpace(req.Subject)
	return req
}
