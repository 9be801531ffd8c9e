package worry

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/google/uuid"
)

// maxNotificationID keeps ids within a signed 32-bit range, which is what
// local notification hosts accept.
const maxNotificationID = 1<<31 - 1

// NewID returns a fresh worry id. Ids are random UUIDs and never reused.
func NewID() string {
	return uuid.NewString()
}

// NewNotificationID returns a random non-zero 31-bit notification id.
func NewNotificationID() int32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("worry: crypto/rand unavailable: " + err.Error())
	}
	return NotificationIDFromUint32(binary.BigEndian.Uint32(b[:]))
}

// NotificationIDFromUint32 maps arbitrary bits onto [1, 2^31-1].
func NotificationIDFromUint32(v uint32) int32 {
	return int32(v%maxNotificationID) + 1
}

// IsValidNotificationID reports whether id is a usable scheduled-notification id.
func IsValidNotificationID(id int32) bool {
	return id > 0
}
