package config

import "time"

// File represents the structure of the .sdstatus configuration file.
// Every field is optional; unset fields keep the built-in defaults.
// CLI flags always take precedence over file values.
type File struct {
	// DirectoryURL overrides the SecureDrop directory API endpoint.
	DirectoryURL string `yaml:"directoryURL,omitempty"`

	// ProxyAddress overrides the external Tor SOCKS5 proxy address.
	ProxyAddress string `yaml:"proxyAddress,omitempty"`

	// UseExternalTor disables the embedded Tor daemon.
	UseExternalTor bool `yaml:"useExternalTor,omitempty"`

	// TimeoutSeconds overrides the per-request timeout in seconds.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// Concurrency overrides the maximum number of simultaneous probes.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Format overrides the default report format.
	Format string `yaml:"format,omitempty"`
}

// Apply copies the set fields of the file onto the config.
// Zero-valued fields are treated as unset and leave the config untouched,
// so a sparse file only overrides what it mentions.
func (f *File) Apply(c *Config) {
	if f.DirectoryURL != "" {
		c.DirectoryURL = f.DirectoryURL
	}
	if f.ProxyAddress != "" {
		c.ProxyAddress = f.ProxyAddress
	}
	if f.UseExternalTor {
		c.UseExternalTor = true
	}
	if f.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Format != "" {
		c.Format = f.Format
	}
}
