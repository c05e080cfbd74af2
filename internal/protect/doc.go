// Package protect guards servers against accidental removal.
//
// A server is locked when its name is protected by default or a user
// locked it, and no unlock record exists for it:
//
//	locked = (default || userLocked) && !unlocked
//
// Locks are keyed per editor ("vscode:github"), so unlocking a server in
// one editor leaves the same name locked in the others. The state lives in
// a small JSON file:
//
//	{"lockedServers": ["cursor:context7"], "unlockedServers": ["vscode:github"]}
//
// The guard only gates mutations. Reads never consult it.
package protect
