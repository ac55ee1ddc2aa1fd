package main

// Config defines the terminal client environment, under the CHAT_ prefix.
// SenderID is the external identity used on submissions; UserID is the
// internal id the directory assigned, used only to highlight own messages.
type Config struct {
	ServerURL  string `split_words:"true" default:"http://localhost:8080"`
	SenderID   string `split_words:"true" required:"true"`
	UserID     string `split_words:"true"`
	LogLevel   string `split_words:"true" default:"info"`
	BufferSize int    `split_words:"true" default:"64"`
}
