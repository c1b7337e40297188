// Package flatten turns a remote git repository into an ordered list of
// source-text records.
//
// A flatten clones the repository into a fresh temporary directory, walks the
// working copy once per allow-listed extension, decodes every matching file
// as UTF-8 and returns one SourceRecord per decoded file. The temporary
// directory is removed on every exit path; callers never see a path into it.
//
// # Skipped files
//
// Files that are not valid UTF-8, or that cannot be read at all (permission
// denied, vanished mid-walk), are silently left out of the result. The
// outcome is therefore ambiguous: an empty result for an extension can mean
// the repository had no such files or that every such file was skipped. Run
// with LOG_LEVEL=debug to see one log line per skipped file with the reason.
//
// Symlinks and directories never match, even when their names carry an
// allow-listed suffix, so a cloned repository cannot point the reader at
// files outside the working copy.
package flatten
