package group

import "errors"

var (
	ErrNotFound       = errors.New("group not found")
	ErrClosed         = errors.New("group is closed")
	ErrNoChange       = errors.New("group already in requested state")
	ErrAlreadyInGroup = errors.New("principal already belongs to a group")
	ErrNotGroupMember = errors.New("principal is not a member of this group")
	ErrManagerSeated  = errors.New("group manager cannot leave or be removed; reassign the manager first")
)
