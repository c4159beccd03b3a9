// Package cli provides the interactive RecordKeeper command-line client.
//
// It wires configuration, the local session store, the API client, and an
// interactive REPL. The web frontend's pages become views addressed by path;
// navigation between them goes through the route guard, which bounces
// unauthenticated users to the login view and remembers where they wanted
// to go.
//
// Key features:
//   - Register / Login / Logout against the REST API
//   - Add, edit, remove, list and show finance records
//   - Page through the server-side record list and view aggregates
//   - View and update device preferences (theme, language, currency)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// A background watcher probes the health endpoint and reflects connectivity
// in the prompt.
package cli
