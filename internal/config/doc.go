// Package config defines the bundle settings and provides helpers to load,
// validate and save them in YAML format.
//
// Settings cover the upstream release repositories, asset selector templates,
// raw winetricks URLs, the patch overlay directory and the output archive path.
// Every field has a default so the tool works with no configuration at all.
package config
