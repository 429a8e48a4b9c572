/*
Package session keeps live conversations in process and serialises access to each one.

A runtime.Session is not safe for concurrent use. Adapters (HTTP, MCP) look sessions
up here and mutate them inside WithLock, which holds a per-session mutex. Mutexes are
reference counted so they disappear once no caller is waiting on them.
*/
package session
