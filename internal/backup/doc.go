// Package backup keeps snapshots of editor config files.
//
// The manager snapshots a file before every write it makes, so a bad edit
// can always be rolled back. Each snapshot is a directory holding a copy
// of the file and a manifest with its SHA-256:
//
//	<DataHome>/mcpm/backups/
//	└── {editor}/
//	    └── {timestamp}/
//	        ├── manifest.json
//	        └── {copied file}
//
// Taking a snapshot prunes the editor's snapshots down to the retention
// count. [Manager.Restore] refuses a snapshot whose copy no longer matches
// its recorded hash ([ErrBackupCorrupted]).
package backup
