package access

import (
	"github.com/gloriapark/concierge/config"
)

// User is one authorized resident from the allow-list.
type User struct {
	Phone   string
	Section string
}

// Policy answers whether a phone number belongs to a configured resident.
// Lookups are exact-string matches against the numbers as configured; no
// normalization is applied, so the config must use the same formatting the
// transport delivers.
type Policy struct {
	users map[string]User
}

func NewPolicy(users map[string]config.UserConfig) *Policy {
	m := make(map[string]User, len(users))
	for phone, u := range users {
		m[phone] = User{Phone: phone, Section: u.Section}
	}
	return &Policy{users: m}
}

func (p *Policy) Authorize(phone string) (User, bool) {
	u, ok := p.users[phone]
	return u, ok
}
