package ledger

import (
	"strings"
)

// Config holds ledger settings. It is modified through ConfigFunc values
// passed to Open.
type Config struct {
	file  string
	conns int
}

type ConfigFunc = func(c *Config)

// File sets the database file. ":memory:" keeps the ledger in memory.
func (c *Config) File(file string) {
	file = strings.TrimSpace(file)
	if file == "" {
		panic("file can't be blank")
	}
	if strings.Contains(file, "?") {
		panic("file can't contain ?")
	}
	c.file = file
}

// Conns sets the maximum number of open connections for file databases.
func (c *Config) Conns(conns int) {
	if conns < 1 {
		panic("conns can't be < 1")
	}
	c.conns = conns
}
