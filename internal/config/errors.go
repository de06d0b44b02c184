package config

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data-dir cannot be empty")
	ErrDataDirUnknown     = errors.New("cannot determine data directory (set data_dir, $XDG_DATA_HOME or $HOME)")
	ErrLogLevelInvalid    = errors.New("invalid log_level")
	ErrTimeoutNegative    = errors.New("timeout cannot be negative")
	ErrConfigFileExists   = errors.New("config file already exists")
)
