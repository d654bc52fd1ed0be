// Package config provides configuration management for sdstatus.
// It defines default values, the Config struct populated from CLI flags
// and the optional .sdstatus configuration file, and validation logic.
package config
