// Package archive extracts and produces tar-family archives.
//
// Extract handles .tar, .tar.gz and .tar.xz input with optional stripping of
// leading path components, the flag upstream tarballs need when they wrap
// their payload in a single top-level directory. Pack walks a directory and
// writes its contents as one gzip-compressed tarball.
package archive
