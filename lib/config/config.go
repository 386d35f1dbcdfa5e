// SPDX-License-Identifier: MIT
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config carries default header field values so that build scripts don't
// have to repeat the same --backup-addr/--version on every invocation.
// Explicit command-line flags always win over values from here.
type Config struct {
	BackupAddr uint32 `toml:"backup_addr,omitzero"`
	Version    uint32 `toml:"version,omitzero"`
}

func Load(file string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(file, &cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Parsing config file")
	}

	return &cfg, nil
}
