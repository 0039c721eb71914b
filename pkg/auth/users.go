// Package auth decides which chat users may use the bot.
package auth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Policy is how a user set is enforced
type Policy string

const (
	// PolicyOpen admits everyone. It applies when the set is empty.
	PolicyOpen Policy = "open"
	// PolicyRestricted admits only listed users
	PolicyRestricted Policy = "restricted"
)

// UserSet is an ordered, de-duplicated list of user identifiers
type UserSet struct {
	ids []string
}

// NewUserSet builds a set from ids, trimming blanks and dropping duplicates
func NewUserSet(ids []string) *UserSet {
	s := &UserSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Policy reports the enforcement policy implied by the set's contents
func (s *UserSet) Policy() Policy {
	if len(s.ids) == 0 {
		return PolicyOpen
	}
	return PolicyRestricted
}

// Allows reports whether id may use the bot under the set's policy
func (s *UserSet) Allows(id string) bool {
	if s.Policy() == PolicyOpen {
		return true
	}
	return s.Contains(id)
}

// Contains reports whether id is listed
func (s *UserSet) Contains(id string) bool {
	id = strings.TrimSpace(id)
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Add appends id and reports whether the set changed
func (s *UserSet) Add(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether the set changed
func (s *UserSet) Remove(id string) bool {
	id = strings.TrimSpace(id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the ids in insertion order
func (s *UserSet) List() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of listed users
func (s *UserSet) Len() int {
	return len(s.ids)
}

// ValidateUserID checks that id is a numeric chat user id
func ValidateUserID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return utils.NewValidationError("user id cannot be empty", nil)
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil || strings.HasPrefix(id, "+") || strings.HasPrefix(id, "-") {
		return utils.NewValidationError(fmt.Sprintf("user id must be numeric: %q", id), nil)
	}
	return nil
}
