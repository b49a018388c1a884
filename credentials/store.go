package credentials

// Slot names mirror the sessionStorage keys the web console persisted its
// session shadow under. They must stay bit-exact for compatibility with
// anything else reading the same shadow.
const (
	SlotUser         = "user"
	SlotAccessToken  = "accessToken"
	SlotRefreshToken = "refreshToken"
)

// Slots lists every slot managed by a Store.
var Slots = []string{SlotUser, SlotAccessToken, SlotRefreshToken}

// Store persists the serialized session shadow: the user record plus the
// access and refresh tokens. The three slots are written together on every
// successful auth event and cleared together on logout; a partial write left
// by a killed process is detected and discarded at hydration.
type Store interface {
	// Write stores a value under the named slot.
	Write(slot, value string) error

	// Read returns the value of a slot. A slot that was never written
	// returns ("", false); Read never fails.
	Read(slot string) (string, bool)

	// Clear removes a single slot. Clearing an absent slot is a no-op.
	Clear(slot string) error

	// ClearAll removes every slot.
	ClearAll() error
}
