package realtime

import (
	"strconv"
	"strings"
)

func itoa(i int) string { return strconv.Itoa(i) }

// ParseRoom splits "age_group_12" into ("age_group", 12).
func ParseRoom(room string) (kind string, id int, ok bool) {
	idx := strings.LastIndex(room, "_")
	if idx <= 0 || idx == len(room)-1 {
		return "", 0, false
	}
	id, err := strconv.Atoi(room[idx+1:])
	if err != nil || id <= 0 {
		return "", 0, false
	}
	kind = room[:idx]
	switch kind {
	case "user", "age_group":
		return kind, id, true
	}
	return "", 0, false
}
