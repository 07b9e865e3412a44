package keyboard

import tele "gopkg.in/telebot.v4"

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// OneTimeOptions renders suggested replies as a resized keyboard that Telegram
// hides after one press. Labels are laid out perRow to a row.
func OneTimeOptions(labels []string, perRow int) *tele.ReplyMarkup {
	if len(labels) == 0 {
		return nil
	}
	markup := ReplyButtons(ChunkLabels(labels, perRow)...)
	markup.OneTimeKeyboard = true
	return markup
}

// ChunkLabels splits a flat list of labels into rows with up to n labels per row.
// If n <= 1 every label gets its own row.
func ChunkLabels(labels []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	rows := make([][]string, 0, (len(labels)+n-1)/n)
	for i := 0; i < len(labels); i += n {
		end := min(i+n, len(labels))
		rows = append(rows, labels[i:end])
	}
	return rows
}
