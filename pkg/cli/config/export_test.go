package config

// Test helpers to inject paths without going through CLI flags.

func (a *AppConfig) SetPath(path string) { a.path = path }

func (c *Corpus) SetPath(path string) { c.path = path }
