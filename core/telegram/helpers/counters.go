package helpers

import tele "gopkg.in/telebot.v4"

const (
	messagesKey = "messages"
	keyboardKey = "kb"
)

// ResetCounters zeroes the per-update outbound message counters.
func ResetCounters(c tele.Context) {
	c.Set(messagesKey, 0)
	c.Set(keyboardKey, false)
}

// Counters reports how many messages were sent for the update and whether any
// carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(messagesKey).(int)
	kb, _ := c.Get(keyboardKey).(bool)
	return msgs, kb
}

func recordSent(c tele.Context, hasKB bool) {
	msgs, _ := c.Get(messagesKey).(int)
	c.Set(messagesKey, msgs+1)
	if hasKB {
		c.Set(keyboardKey, true)
	}
}
