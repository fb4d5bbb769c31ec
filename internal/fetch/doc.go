// Package fetch downloads files over HTTP to caller-specified paths.
//
// Downloads overwrite their destination and stream straight to disk. There is
// no checksum verification and no resumable transfer support.
package fetch
