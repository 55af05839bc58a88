package domain

import "strings"

// Формат идентификаторов комнат (контракт с фронтендом):
//
//	user:<a>_<b>     — личная переписка двух пользователей, a < b
//	listing_<id>     — комната объявления (все покупатели + владелец)
//	support:<userID> — канал пользователь ↔ админ
//
// Идентификатор обязан выводиться обеими сторонами независимо, без
// рукопожатия, поэтому в нём нет ничего серверного — только стабильные id.
const (
	directPrefix  = "user:"
	listingPrefix = "listing_"
	supportPrefix = "support:"

	directSep = "_"
)

// Room — разобранный идентификатор комнаты. Парсим строку один раз на
// границе и дальше диспетчеризуемся по варианту.
type Room interface {
	ID() string
	Kind() string
}

// DirectRoom — переписка ровно двух пользователей. A < B лексикографически.
type DirectRoom struct {
	A, B string
}

func (r DirectRoom) ID() string { return directPrefix + r.A + directSep + r.B }
func (r DirectRoom) Kind() string { return "direct" }

// Has reports whether userID is one of the two participants.
func (r DirectRoom) Has(userID string) bool { return userID == r.A || userID == r.B }

// ListingRoom — общая комната объявления.
type ListingRoom struct {
	ListingID string
}

func (r ListingRoom) ID() string { return listingPrefix + r.ListingID }
func (r ListingRoom) Kind() string { return "listing" }

// SupportRoom — канал одного пользователя к админам.
type SupportRoom struct {
	UserID string
}

func (r SupportRoom) ID() string { return supportPrefix + r.UserID }
func (r SupportRoom) Kind() string { return "support" }

// DirectRoomID строит канонический id личной комнаты. Порядок участников
// фиксирован (лексикографический), так что отправитель и получатель
// независимо получают одну и ту же строку.
func DirectRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return DirectRoom{A: a, B: b}.ID()
}

// SupportRoomID возвращает id поддержки для пользователя.
func SupportRoomID(userID string) string { return SupportRoom{UserID: userID}.ID() }

// ListingRoomID возвращает id комнаты объявления.
func ListingRoomID(listingID string) string { return ListingRoom{ListingID: listingID}.ID() }

// ParseRoomID разбирает строковый id в вариант комнаты.
// Неизвестный префикс или кривой формат — ErrInvalidRoomID.
func ParseRoomID(roomID string) (Room, error) {
	switch {
	case strings.HasPrefix(roomID, directPrefix):
		rest := strings.TrimPrefix(roomID, directPrefix)
		parts := strings.SplitN(rest, directSep, 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, ErrInvalidRoomID
		}
		// фронтенд пару не сортирует — канонизируем на сервере, иначе
		// user:b_a и user:a_b разъезжаются в две разные комнаты
		a, b := parts[0], parts[1]
		if b < a {
			a, b = b, a
		}
		return DirectRoom{A: a, B: b}, nil

	case strings.HasPrefix(roomID, listingPrefix):
		id := strings.TrimPrefix(roomID, listingPrefix)
		if id == "" {
			return nil, ErrInvalidRoomID
		}
		return ListingRoom{ListingID: id}, nil

	case strings.HasPrefix(roomID, supportPrefix):
		id := strings.TrimPrefix(roomID, supportPrefix)
		if id == "" {
			return nil, ErrInvalidRoomID
		}
		return SupportRoom{UserID: id}, nil

	default:
		return nil, ErrInvalidRoomID
	}
}
