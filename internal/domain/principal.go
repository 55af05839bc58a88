package domain

// Principal — кто выполняет операцию. Админ — отдельный вариант со
// «знанием общего секрета», а не фейковая строка пользователя.
type Principal struct {
	kind   principalKind
	userID string
}

type principalKind int

const (
	kindAnonymous principalKind = iota
	kindRegular
	kindAdmin
)

var (
	Anonymous = Principal{kind: kindAnonymous}
	Admin     = Principal{kind: kindAdmin}
)

func Regular(userID string) Principal {
	return Principal{kind: kindRegular, userID: userID}
}

func (p Principal) IsAnonymous() bool { return p.kind == kindAnonymous }
func (p Principal) IsAdmin() bool     { return p.kind == kindAdmin }

// UserID возвращает id пользователя и ok=false для admin/anonymous.
func (p Principal) UserID() (string, bool) {
	if p.kind != kindRegular {
		return "", false
	}
	return p.userID, true
}
