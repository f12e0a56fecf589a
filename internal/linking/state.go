package linking

import (
	"fmt"
	"strconv"
)

// The OAuth state parameter round-trips the Telegram id through Spotify.
// No pending-authorization record is persisted; this value is the only
// correlation between an authorization request and its callback.

// EncodeState renders a Telegram id as a state parameter.
func EncodeState(telegramID int64) string {
	return strconv.FormatInt(telegramID, 10)
}

// DecodeState recovers the Telegram id from a callback's state parameter.
func DecodeState(state string) (int64, error) {
	id, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("state %q is not a telegram id", state)
	}
	if id <= 0 {
		return 0, fmt.Errorf("state %q is not a positive telegram id", state)
	}
	return id, nil
}
