// Package interfaces lists the seams of the application and checks at
// compile time that the production types implement them.
//
// # Data Access
//
//   - BookStore: catalog search and mutations used by the JSON API and the
//     pages (internal/http/books.go), implemented by catalog.Service.
//
// # Sessions
//
//   - SessionStore: who is logged in (internal/auth/sessions.go). The signed
//     cookie store is the default; the scs store keeps sessions in SQLite.
//
// # Adding a New Session Backend
//
//  1. Implement LoadAndSave, Login, Logout and UserID in internal/auth/.
//  2. Select it in NewSessionStore from config.SessionBackend.
//  3. Add a check here:
//
//     var _ auth.SessionStore = (*RedisSessions)(nil)
package interfaces
