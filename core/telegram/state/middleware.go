package state

import tele "gopkg.in/telebot.v4"

// Serialized runs next while holding the sender's session lock, so two
// updates from one user are never handled concurrently. Updates without a
// sender pass through.
func Serialized(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if mgr == nil || user == nil {
				return next(c)
			}
			unlock := mgr.Lock(user.ID)
			defer unlock()
			return next(c)
		}
	}
}
