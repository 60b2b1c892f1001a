// Package config loads the learnerd configuration file.
//
// The file holds one "name: value" pair per line and is parsed as YAML, so
// comments and quoting follow YAML rules. Unknown names are rejected.
//
//	port: 3579
//	process_threads: 16
//	data_path: /var/lib/learner/learner.db
//	compression: zstd
package config
