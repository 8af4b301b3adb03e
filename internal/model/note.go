package model

// NoteDateLayout is the layout of Note.Date.
const NoteDateLayout = "2006-01-02 15:04:05"

type Note struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Date string `json:"date"`
	User string `json:"user"`
}
