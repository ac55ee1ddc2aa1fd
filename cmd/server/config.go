package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	MaxBodyLength        int           `env:"MAX_BODY_LENGTH,default=4000"`
	SubmitTimeout        time.Duration `env:"SUBMIT_TIMEOUT,default=5s"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=1s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	CensoredWords        string        `env:"CENSORED_WORDS"` // comma-separated; empty disables moderation
	CensorReplacement    string        `env:"CENSOR_REPLACEMENT,default=*"`
	UsersSeedFile        string        `env:"USERS_SEED_FILE"` // optional directory seeding
}
